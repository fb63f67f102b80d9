package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/skyfield-labs/aeromap/internal/resilience"
)

const (
	googleID      = "google"
	googleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
)

// Google resolves addresses against the Google geocoding API. Outcomes are
// reported through the body-level status field rather than HTTP status codes;
// coordinates nest under results[].geometry.location.
type Google struct {
	key     string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewGoogle creates the Google adapter, failing fast when the key is absent.
func NewGoogle(key string, opts ...Option) (*Google, error) {
	if key == "" {
		return nil, newError(googleID, KindCredentialMissing, eris.New("GOOGLE_GEOCODING_API_KEY not set"))
	}
	s := applyOptions(googleID, googleBaseURL, opts)
	return &Google{key: key, baseURL: s.baseURL, http: s.http, retry: *s.retry}, nil
}

func (p *Google) ID() string { return googleID }

func (p *Google) Geocode(ctx context.Context, address string) (Result, error) {
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (Result, error) {
		return p.fetch(ctx, address)
	})
}

func (p *Google) fetch(ctx context.Context, address string) (Result, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", p.key)

	status, body, err := getBody(ctx, p.http, googleID, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return Result{}, newErrorf(googleID, KindRateLimited, "HTTP %d", status)
	default:
		return Result{}, newErrorf(googleID, KindUpstream, "HTTP %d: %s", status, snippet(body))
	}

	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, newError(googleID, KindUpstream, err)
	}

	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return Result{}, newErrorf(googleID, KindEmptyResult, "no match for address")
	case "OVER_QUERY_LIMIT", "RESOURCE_EXHAUSTED":
		return Result{}, newErrorf(googleID, KindRateLimited, "status %s", payload.Status)
	default:
		return Result{}, newErrorf(googleID, KindUpstream, "status %s", payload.Status)
	}
	if len(payload.Results) == 0 {
		return Result{}, newErrorf(googleID, KindEmptyResult, "no match for address")
	}

	loc := payload.Results[0].Geometry.Location
	return checked(googleID, loc.Lat, loc.Lng)
}
