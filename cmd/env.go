package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/skyfield-labs/aeromap/internal/config"
	"github.com/skyfield-labs/aeromap/internal/discovery"
	"github.com/skyfield-labs/aeromap/internal/geocode"
	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
	"github.com/skyfield-labs/aeromap/internal/store"
)

// env bundles the shared dependencies behind the commands.
type env struct {
	Store       store.Store
	Resolver    *geocode.Resolver
	Descriptors []provider.Descriptor
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv opens the store and builds the geocoding chain from config.
// With useCache false the resolver runs chain-only, still writing nothing.
func initEnv(ctx context.Context, verbose, useCache bool) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	chain, descs, err := geocode.BuildChain(chainConfig(cfg))
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "build provider chain")
	}

	opts := []geocode.ResolverOption{geocode.WithVerbose(verbose)}
	if useCache {
		opts = append(opts, geocode.WithCache(store.NewCache(st)))
	}

	return &env{
		Store:       st,
		Resolver:    geocode.NewResolver(chain, opts...),
		Descriptors: descs,
	}, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.Path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q (want sqlite or postgres)", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func chainConfig(c *config.Config) geocode.ChainConfig {
	return geocode.ChainConfig{
		Order:              c.Geocoder.OrderList(),
		NominatimURL:       c.Geocoder.NominatimURL,
		NominatimUserAgent: c.Geocoder.NominatimUserAgent,
		NominatimMinGap:    time.Duration(c.Geocoder.NominatimMinGapMS) * time.Millisecond,
		LocationIQKey:      c.Geocoder.LocationIQKey,
		OpenCageKey:        c.Geocoder.OpenCageKey,
		HereKey:            c.Geocoder.HereAPIKey,
		MapboxToken:        c.Geocoder.MapboxToken,
		GoogleKey:          c.Geocoder.GoogleAPIKey,
	}
}

func newDiscovery() (*discovery.Service, error) {
	filters, err := discovery.LoadFilters(cfg.Discovery.FiltersFile)
	if err != nil {
		return nil, err
	}
	overpass := discovery.NewOverpass(cfg.Discovery.OverpassURL, time.Duration(cfg.Discovery.TimeoutSecs)*time.Second)
	return discovery.NewService(overpass, filters, cfg.Discovery.DedupeDistanceM), nil
}
