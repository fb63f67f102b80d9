package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/skyfield-labs/aeromap/internal/resilience"
)

const (
	locationIQID      = "locationiq"
	locationIQBaseURL = "https://us1.locationiq.com/v1/search"
)

// LocationIQ resolves addresses against the LocationIQ search API. The
// response shape matches Nominatim's (flat lat/lon strings in an array).
type LocationIQ struct {
	key     string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewLocationIQ creates the LocationIQ adapter, failing fast when the key is
// absent so the factory can exclude it from the chain.
func NewLocationIQ(key string, opts ...Option) (*LocationIQ, error) {
	if key == "" {
		return nil, newError(locationIQID, KindCredentialMissing, eris.New("LOCATIONIQ_KEY not set"))
	}
	s := applyOptions(locationIQID, locationIQBaseURL, opts)
	return &LocationIQ{key: key, baseURL: s.baseURL, http: s.http, retry: *s.retry}, nil
}

func (p *LocationIQ) ID() string { return locationIQID }

func (p *LocationIQ) Geocode(ctx context.Context, address string) (Result, error) {
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (Result, error) {
		return p.fetch(ctx, address)
	})
}

func (p *LocationIQ) fetch(ctx context.Context, address string) (Result, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("key", p.key)
	q.Set("format", "json")
	q.Set("limit", "1")

	status, body, err := getBody(ctx, p.http, locationIQID, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return Result{}, newErrorf(locationIQID, KindRateLimited, "HTTP %d", status)
	case http.StatusNotFound:
		// LocationIQ signals "no match" with 404 rather than an empty array.
		return Result{}, newErrorf(locationIQID, KindEmptyResult, "no match for address")
	default:
		return Result{}, newErrorf(locationIQID, KindUpstream, "HTTP %d: %s", status, snippet(body))
	}

	var rows []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return Result{}, newError(locationIQID, KindUpstream, err)
	}
	if len(rows) == 0 {
		return Result{}, newErrorf(locationIQID, KindEmptyResult, "no match for address")
	}

	lat, err := strconv.ParseFloat(rows[0].Lat, 64)
	if err != nil {
		return Result{}, newError(locationIQID, KindUpstream, err)
	}
	lon, err := strconv.ParseFloat(rows[0].Lon, 64)
	if err != nil {
		return Result{}, newError(locationIQID, KindUpstream, err)
	}
	return checked(locationIQID, lat, lon)
}
