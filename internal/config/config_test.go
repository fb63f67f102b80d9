package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "aeromap.sqlite3", cfg.Store.Path)
	assert.Equal(t, "nominatim,locationiq,opencage,here,mapbox,google", cfg.Geocoder.Order)
	assert.Equal(t, 1000, cfg.Geocoder.NominatimMinGapMS)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Discovery.OverpassURL)
	assert.Equal(t, 60.0, cfg.Discovery.RadiusMiles)
	assert.Equal(t, 50.0, cfg.Discovery.DedupeDistanceM)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
geocoder:
  order: "google,here"
  google_api_key: "abc123"
discovery:
  radius_miles: 25
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"google", "here"}, cfg.Geocoder.OrderList())
	assert.Equal(t, "abc123", cfg.Geocoder.GoogleAPIKey)
	assert.Equal(t, 25.0, cfg.Discovery.RadiusMiles)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched sections keep defaults.
	assert.Equal(t, "sqlite", cfg.Store.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AEROMAP_GEOCODER_LOCATIONIQ_KEY", "from-env")
	t.Setenv("AEROMAP_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Geocoder.LocationIQKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestOrderList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"nominatim", []string{"nominatim"}},
		{"a, b ,c", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := GeocoderConfig{Order: tt.in}.OrderList()
		assert.Equal(t, tt.want, got, "order %q", tt.in)
	}
}

func TestInitLogger_RejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "loudest", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_ConsoleFormat(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
