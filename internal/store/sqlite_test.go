package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
	"github.com/skyfield-labs/aeromap/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "aeromap.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_GeocodeCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetGeocode(ctx, "Filton, Bristol")
	require.NoError(t, err)
	assert.False(t, ok, "miss before any write")

	want := provider.Result{Lat: 51.5091, Lon: -2.5773, Provider: "nominatim"}
	require.NoError(t, s.PutGeocode(ctx, "Filton, Bristol", want))

	got, ok, err := s.GetGeocode(ctx, "Filton, Bristol")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSQLite_GeocodeCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.sqlite3")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.PutGeocode(ctx, "k", provider.Result{Lat: 1, Lon: 2, Provider: "p"}))
	require.NoError(t, s.Close())

	s2, err := NewSQLite(path)
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Migrate(ctx))

	got, ok, err := s2.GetGeocode(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok, "cache is durable across restarts")
	assert.Equal(t, "p", got.Provider)
}

func TestSQLite_GeocodeCacheLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutGeocode(ctx, "k", provider.Result{Lat: 1, Lon: 2, Provider: "old"}))
	require.NoError(t, s.PutGeocode(ctx, "k", provider.Result{Lat: 3, Lon: 4, Provider: "new"}))

	got, ok, err := s.GetGeocode(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, provider.Result{Lat: 3, Lon: 4, Provider: "new"}, got)

	n, err := s.GeocodeCacheSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one entry per key, no history")
}

func TestSQLite_SaveFacilityIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := &model.Facility{Name: "Plant A", Address: "1 Runway Rd", Lat: 51, Lon: -2, Provider: "here"}
	id1, err := s.SaveFacility(ctx, f)
	require.NoError(t, err)

	f2 := &model.Facility{Name: "Plant A", Address: "1 Runway Rd", Lat: 51, Lon: -2}
	id2, err := s.SaveFacility(ctx, f2)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	facs, err := s.ListFacilities(ctx)
	require.NoError(t, err)
	assert.Len(t, facs, 1)
	assert.Equal(t, "here", facs[0].Provider)
}

func TestSQLite_SuppliersOrderedByDistance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := &model.Facility{Name: "Plant A", Address: "1 Runway Rd", Lat: 51, Lon: -2}
	facID, err := s.SaveFacility(ctx, f)
	require.NoError(t, err)

	sups := []model.Supplier{
		{Name: "Far Machining", Lat: 51.2, Lon: -2.2, DistanceMiles: 15.4, Source: "overpass", Confidence: 0.7},
		{Name: "Near Composites", Lat: 51.01, Lon: -2.01, DistanceMiles: 0.9, Source: "overpass", Confidence: 0.9},
	}
	require.NoError(t, s.SaveSuppliers(ctx, facID, sups))

	got, err := s.ListSuppliers(ctx, facID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Near Composites", got[0].Name)
	assert.Equal(t, "Far Machining", got[1].Name)
	assert.NotEmpty(t, got[0].ID)
}

func TestSQLite_ListSuppliersEmptyFacility(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListSuppliers(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Empty(t, got)
}
