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
	openCageID      = "opencage"
	openCageBaseURL = "https://api.opencagedata.com/geocode/v1/json"
)

// OpenCage resolves addresses against the OpenCage Data API. Coordinates
// come back nested under results[].geometry as numeric lat/lng.
type OpenCage struct {
	key     string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewOpenCage creates the OpenCage adapter, failing fast when the key is absent.
func NewOpenCage(key string, opts ...Option) (*OpenCage, error) {
	if key == "" {
		return nil, newError(openCageID, KindCredentialMissing, eris.New("OPENCAGE_KEY not set"))
	}
	s := applyOptions(openCageID, openCageBaseURL, opts)
	return &OpenCage{key: key, baseURL: s.baseURL, http: s.http, retry: *s.retry}, nil
}

func (p *OpenCage) ID() string { return openCageID }

func (p *OpenCage) Geocode(ctx context.Context, address string) (Result, error) {
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (Result, error) {
		return p.fetch(ctx, address)
	})
}

func (p *OpenCage) fetch(ctx context.Context, address string) (Result, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("key", p.key)
	q.Set("limit", "1")

	status, body, err := getBody(ctx, p.http, openCageID, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusPaymentRequired, http.StatusTooManyRequests:
		// 402 is OpenCage's daily-quota-exhausted status.
		return Result{}, newErrorf(openCageID, KindRateLimited, "HTTP %d", status)
	default:
		return Result{}, newErrorf(openCageID, KindUpstream, "HTTP %d: %s", status, snippet(body))
	}

	var payload struct {
		Results []struct {
			Geometry struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, newError(openCageID, KindUpstream, err)
	}
	if len(payload.Results) == 0 {
		return Result{}, newErrorf(openCageID, KindEmptyResult, "no match for address")
	}

	geom := payload.Results[0].Geometry
	return checked(openCageID, geom.Lat, geom.Lng)
}
