// Package store provides durable persistence for the geocode cache and for
// discovery results, with sqlite and postgres backends.
package store

import (
	"context"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
	"github.com/skyfield-labs/aeromap/internal/model"
)

// Store defines the persistence interface shared by both backends.
type Store interface {
	// Geocode cache. One entry per trimmed address; later writes for the
	// same key overwrite earlier ones. Entries are never deleted here.
	GetGeocode(ctx context.Context, address string) (provider.Result, bool, error)
	PutGeocode(ctx context.Context, address string, res provider.Result) error

	// Discovery results.
	SaveFacility(ctx context.Context, f *model.Facility) (string, error)
	SaveSuppliers(ctx context.Context, facilityID string, suppliers []model.Supplier) error
	ListSuppliers(ctx context.Context, facilityID string) ([]model.Supplier, error)
	ListFacilities(ctx context.Context) ([]model.Facility, error)
	GeocodeCacheSize(ctx context.Context) (int, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}

// Cache adapts a Store to the resolver's cache interface.
type Cache struct {
	s Store
}

// NewCache wraps a store as a geocode result cache.
func NewCache(s Store) *Cache {
	return &Cache{s: s}
}

func (c *Cache) Get(ctx context.Context, key string) (provider.Result, bool, error) {
	return c.s.GetGeocode(ctx, key)
}

func (c *Cache) Set(ctx context.Context, key string, res provider.Result) error {
	return c.s.PutGeocode(ctx, key, res)
}
