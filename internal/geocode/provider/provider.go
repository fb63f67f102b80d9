// Package provider defines the interface and implementations for geocoding
// backends. Each backend translates one free-text address into coordinates
// with its own request shape, response parsing, and error classification.
package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/skyfield-labs/aeromap/internal/resilience"
)

// Result is a resolved coordinate pair with provenance.
type Result struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Provider string  `json:"provider"`
}

// Provider defines the interface for geocoding backends. Geocode performs one
// logical resolution attempt; transient upstream failures may be retried
// internally within a bounded budget, but never against a different address
// or service.
type Provider interface {
	// ID returns the backend identifier (matches the configured chain order).
	ID() string
	// Geocode resolves a non-empty address to coordinates.
	Geocode(ctx context.Context, address string) (Result, error)
}

// Descriptor describes one configured backend, built once at startup.
type Descriptor struct {
	ID                string        `json:"id"`
	CredentialPresent bool          `json:"credential_present"`
	RateLimit         time.Duration `json:"rate_limit,omitempty"`
}

// Option configures an adapter.
type Option func(*settings)

type settings struct {
	baseURL string
	http    *http.Client
	retry   *resilience.RetryConfig
	minGap  time.Duration
}

// WithBaseURL overrides the backend's default endpoint.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.http = hc }
}

// WithRetryConfig overrides the default bounded-retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(s *settings) { s.retry = &cfg }
}

// WithMinGap overrides the minimum gap between outbound requests for
// backends that enforce a request cadence.
func WithMinGap(d time.Duration) Option {
	return func(s *settings) { s.minGap = d }
}

func applyOptions(backend, defaultBaseURL string, opts []Option) settings {
	s := settings{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(&s)
	}
	if s.retry == nil {
		cfg := defaultRetry(backend)
		s.retry = &cfg
	}
	return s
}

// defaultRetry is the shared bounded-retry policy: up to 3 attempts with
// base delay doubling per attempt, retrying only rate-limit and transport
// failures.
func defaultRetry(backend string) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2.0,
		ShouldRetry: Retryable,
		OnRetry:     resilience.RetryLogger(backend),
	}
}

// checked validates coordinate ranges before constructing a Result.
// Out-of-range values from an upstream are a parse failure, not a success.
func checked(backend string, lat, lon float64) (Result, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Result{}, newErrorf(backend, KindUpstream, "coordinates out of range: %g,%g", lat, lon)
	}
	return Result{Lat: lat, Lon: lon, Provider: backend}, nil
}
