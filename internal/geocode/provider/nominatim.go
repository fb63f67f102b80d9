package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/skyfield-labs/aeromap/internal/resilience"
)

const (
	nominatimID      = "nominatim"
	nominatimBaseURL = "https://nominatim.openstreetmap.org"

	// nominatimMinGap is the minimum gap between outbound requests. This is
	// the upstream's usage policy, not a tuning knob; violating it risks the
	// client being blocked entirely.
	nominatimMinGap = time.Second
)

// Nominatim resolves addresses against the free OSM Nominatim service.
// A single limiter serializes all outbound requests from this process so the
// minimum inter-request gap holds globally across concurrent callers.
type Nominatim struct {
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	http      *http.Client
	retry     resilience.RetryConfig
}

// NewNominatim creates the Nominatim adapter. No credential is required;
// upstream policy requires an identifying User-Agent.
func NewNominatim(userAgent string, opts ...Option) *Nominatim {
	s := applyOptions(nominatimID, nominatimBaseURL, opts)
	gap := s.minGap
	if gap <= 0 {
		gap = nominatimMinGap
	}
	return &Nominatim{
		baseURL:   s.baseURL,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(gap), 1),
		http:      s.http,
		retry:     *s.retry,
	}
}

func (p *Nominatim) ID() string { return nominatimID }

// MinGap returns the enforced inter-request gap.
func (p *Nominatim) MinGap() time.Duration {
	return time.Duration(float64(time.Second) / float64(p.limiter.Limit()))
}

func (p *Nominatim) Geocode(ctx context.Context, address string) (Result, error) {
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (Result, error) {
		return p.fetch(ctx, address)
	})
}

func (p *Nominatim) fetch(ctx context.Context, address string) (Result, error) {
	// Every outbound request, retries included, waits its turn.
	if err := p.limiter.Wait(ctx); err != nil {
		return Result{}, newError(nominatimID, KindTransport, err)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	header := http.Header{}
	header.Set("User-Agent", p.userAgent)

	status, body, err := getBody(ctx, p.http, nominatimID, p.baseURL+"/search?"+q.Encode(), header)
	if err != nil {
		return Result{}, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return Result{}, newErrorf(nominatimID, KindRateLimited, "HTTP %d", status)
	default:
		return Result{}, newErrorf(nominatimID, KindUpstream, "HTTP %d: %s", status, snippet(body))
	}

	var rows []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return Result{}, newError(nominatimID, KindUpstream, err)
	}
	if len(rows) == 0 {
		return Result{}, newErrorf(nominatimID, KindEmptyResult, "no match for address")
	}

	lat, err := strconv.ParseFloat(rows[0].Lat, 64)
	if err != nil {
		return Result{}, newError(nominatimID, KindUpstream, err)
	}
	lon, err := strconv.ParseFloat(rows[0].Lon, 64)
	if err != nil {
		return Result{}, newError(nominatimID, KindUpstream, err)
	}
	return checked(nominatimID, lat, lon)
}
