// Package geocode implements the cache-then-ordered-fallback resolution
// protocol: check the durable cache, then try each configured backend in a
// fixed order until one answers, caching the first success with provenance.
package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
)

// ErrEmptyProviderChain is returned when the resolver was built with no
// usable backends at all. It is distinct from "every backend was tried and
// failed": no network call is ever attempted in this state.
var ErrEmptyProviderChain = eris.New("geocode: no usable providers configured")

// ExhaustedError aggregates a full chain failure. It carries the last
// backend error observed; per-backend failures along the way are trace-only.
type ExhaustedError struct {
	Address  string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("geocode: all %d providers failed for %q: %v", e.Attempts, e.Address, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Cache is a durable address→result store. Implementations must be safe for
// concurrent use; a write and a read on the same key race only as
// last-write-wins.
type Cache interface {
	Get(ctx context.Context, key string) (provider.Result, bool, error)
	Set(ctx context.Context, key string, res provider.Result) error
}

// Resolver orchestrates cache lookup and ordered fallback across backends.
// The chain order is fixed at construction; every Resolve call restarts from
// the first backend. Concurrent Resolve calls for different addresses are
// safe: the only shared state is the cache and each backend's own limiter.
type Resolver struct {
	chain   []provider.Provider
	cache   Cache
	verbose bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache attaches a durable result cache. Without one every call goes to
// the backends.
func WithCache(c Cache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

// WithVerbose promotes per-attempt trace events to info level. Tracing is a
// pure side channel and never alters control flow.
func WithVerbose(v bool) ResolverOption {
	return func(r *Resolver) { r.verbose = v }
}

// NewResolver creates a resolver over the given backend chain.
func NewResolver(chain []provider.Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{chain: chain}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve turns a free-text address into coordinates with provenance.
// The cache key is the trimmed address text; no other normalization is
// applied. On a miss, backends are tried in order and the first success is
// written through. If every backend fails, a single ExhaustedError carrying
// the last failure is returned.
func (r *Resolver) Resolve(ctx context.Context, address string) (provider.Result, error) {
	if len(r.chain) == 0 {
		return provider.Result{}, ErrEmptyProviderChain
	}

	key := strings.TrimSpace(address)

	if r.cache != nil {
		res, ok, err := r.cache.Get(ctx, key)
		switch {
		case err != nil:
			// A broken cache degrades to a miss rather than failing the call.
			zap.L().Warn("geocode: cache read failed", zap.String("address", key), zap.Error(err))
		case ok:
			r.trace("geocode: cache hit",
				zap.String("address", key),
				zap.String("provider", res.Provider),
			)
			return res, nil
		default:
			r.trace("geocode: cache miss", zap.String("address", key))
		}
	}

	var last error
	for _, p := range r.chain {
		if err := ctx.Err(); err != nil {
			if last == nil {
				last = err
			}
			break
		}

		r.trace("geocode: trying provider", zap.String("provider", p.ID()))
		start := time.Now()
		res, err := p.Geocode(ctx, address)
		if err != nil {
			last = err
			r.trace("geocode: provider failed",
				zap.String("provider", p.ID()),
				zap.Duration("latency", time.Since(start)),
				zap.Error(err),
			)
			continue
		}

		r.trace("geocode: provider succeeded",
			zap.String("provider", p.ID()),
			zap.Duration("latency", time.Since(start)),
			zap.Float64("lat", res.Lat),
			zap.Float64("lon", res.Lon),
		)

		if r.cache != nil {
			if err := r.cache.Set(ctx, key, res); err != nil {
				zap.L().Warn("geocode: cache write failed", zap.String("address", key), zap.Error(err))
			}
		}
		return res, nil
	}

	return provider.Result{}, &ExhaustedError{Address: address, Attempts: len(r.chain), Last: last}
}

// Chain returns the backend ids in fallback order.
func (r *Resolver) Chain() []string {
	ids := make([]string, len(r.chain))
	for i, p := range r.chain {
		ids[i] = p.ID()
	}
	return ids
}

func (r *Resolver) trace(msg string, fields ...zap.Field) {
	if r.verbose {
		zap.L().Info(msg, fields...)
		return
	}
	zap.L().Debug(msg, fields...)
}
