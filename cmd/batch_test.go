package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
)

func TestReadAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.txt")
	require.NoError(t, os.WriteFile(path, []byte("Filton, Bristol\n\n  10 Downing St, London  \n"), 0o644))

	got, err := readAddresses(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Filton, Bristol", "10 Downing St, London"}, got)

	_, err = readAddresses(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestProcessBatch(t *testing.T) {
	addresses := []string{"a", "b", "c", "d"}

	var inFlight, peak atomic.Int32
	resolve := func(ctx context.Context, address string) (provider.Result, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		if address == "c" {
			return provider.Result{}, eris.New("no match")
		}
		return provider.Result{Lat: 1, Lon: 2, Provider: "nominatim"}, nil
	}

	results := processBatch(context.Background(), addresses, 2, resolve)
	require.Len(t, results, 4)

	// Input order preserved.
	for i, addr := range addresses {
		assert.Equal(t, addr, results[i].Address)
	}

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "nominatim", results[0].Res.Provider)
	assert.Error(t, results[2].Err)
	assert.LessOrEqual(t, peak.Load(), int32(2), "concurrency capped")
}

func TestWriteBatchResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	f, err := os.Create(path)
	require.NoError(t, err)

	results := []batchResult{
		{Address: "a", Res: provider.Result{Lat: 51.5, Lon: -2.5, Provider: "google"}},
		{Address: "b", Err: eris.New("exhausted")},
	}
	require.NoError(t, writeBatchResults(f, results))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "address,lat,lon,provider,error\n")
	assert.Contains(t, string(data), "a,51.5,-2.5,google,\n")
	assert.Contains(t, string(data), "b,,,,exhausted\n")
}
