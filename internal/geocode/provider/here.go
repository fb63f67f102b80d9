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
	hereID      = "here"
	hereBaseURL = "https://geocode.search.hereapi.com/v1/geocode"
)

// Here resolves addresses against the HERE geocoding API. Coordinates come
// back under items[].position as numeric lat/lng.
type Here struct {
	key     string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewHere creates the HERE adapter, failing fast when the key is absent.
func NewHere(key string, opts ...Option) (*Here, error) {
	if key == "" {
		return nil, newError(hereID, KindCredentialMissing, eris.New("HERE_API_KEY not set"))
	}
	s := applyOptions(hereID, hereBaseURL, opts)
	return &Here{key: key, baseURL: s.baseURL, http: s.http, retry: *s.retry}, nil
}

func (p *Here) ID() string { return hereID }

func (p *Here) Geocode(ctx context.Context, address string) (Result, error) {
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (Result, error) {
		return p.fetch(ctx, address)
	})
}

func (p *Here) fetch(ctx context.Context, address string) (Result, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("apiKey", p.key)

	status, body, err := getBody(ctx, p.http, hereID, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return Result{}, newErrorf(hereID, KindRateLimited, "HTTP %d", status)
	default:
		return Result{}, newErrorf(hereID, KindUpstream, "HTTP %d: %s", status, snippet(body))
	}

	var payload struct {
		Items []struct {
			Position struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"position"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, newError(hereID, KindUpstream, err)
	}
	if len(payload.Items) == 0 {
		return Result{}, newErrorf(hereID, KindEmptyResult, "no match for address")
	}

	pos := payload.Items[0].Position
	return checked(hereID, pos.Lat, pos.Lng)
}
