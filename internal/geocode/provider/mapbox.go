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
	mapboxID      = "mapbox"
	mapboxBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
)

// Mapbox resolves addresses against the Mapbox places API. The address is
// path-encoded rather than a query parameter, and features[].center is a
// [lon, lat] pair, reversed relative to every other backend here.
type Mapbox struct {
	token   string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewMapbox creates the Mapbox adapter, failing fast when the token is absent.
func NewMapbox(token string, opts ...Option) (*Mapbox, error) {
	if token == "" {
		return nil, newError(mapboxID, KindCredentialMissing, eris.New("MAPBOX_TOKEN not set"))
	}
	s := applyOptions(mapboxID, mapboxBaseURL, opts)
	return &Mapbox{token: token, baseURL: s.baseURL, http: s.http, retry: *s.retry}, nil
}

func (p *Mapbox) ID() string { return mapboxID }

func (p *Mapbox) Geocode(ctx context.Context, address string) (Result, error) {
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (Result, error) {
		return p.fetch(ctx, address)
	})
}

func (p *Mapbox) fetch(ctx context.Context, address string) (Result, error) {
	q := url.Values{}
	q.Set("access_token", p.token)
	q.Set("limit", "1")

	endpoint := p.baseURL + "/" + url.PathEscape(address) + ".json?" + q.Encode()
	status, body, err := getBody(ctx, p.http, mapboxID, endpoint, nil)
	if err != nil {
		return Result{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return Result{}, newErrorf(mapboxID, KindRateLimited, "HTTP %d", status)
	default:
		return Result{}, newErrorf(mapboxID, KindUpstream, "HTTP %d: %s", status, snippet(body))
	}

	var payload struct {
		Features []struct {
			Center []float64 `json:"center"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, newError(mapboxID, KindUpstream, err)
	}
	if len(payload.Features) == 0 {
		return Result{}, newErrorf(mapboxID, KindEmptyResult, "no match for address")
	}

	center := payload.Features[0].Center
	if len(center) != 2 {
		return Result{}, newErrorf(mapboxID, KindUpstream, "malformed center: %v", center)
	}
	// center is [lon, lat].
	return checked(mapboxID, center[1], center[0])
}
