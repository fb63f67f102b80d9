package geocode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCredentials() ChainConfig {
	return ChainConfig{
		NominatimUserAgent: "aeromap-test/1.0",
		LocationIQKey:      "liq",
		OpenCageKey:        "oc",
		HereKey:            "here",
		MapboxToken:        "mb",
		GoogleKey:          "g",
	}
}

func TestBuildChain_DefaultOrderAllConfigured(t *testing.T) {
	chain, descs, err := BuildChain(allCredentials())
	require.NoError(t, err)

	ids := make([]string, len(chain))
	for i, p := range chain {
		ids[i] = p.ID()
	}
	assert.Equal(t, []string{"nominatim", "locationiq", "opencage", "here", "mapbox", "google"}, ids)
	assert.Len(t, descs, 6)
	for _, d := range descs {
		assert.True(t, d.CredentialPresent, d.ID)
	}
}

func TestBuildChain_MissingCredentialsAreSkippedNotFatal(t *testing.T) {
	cfg := ChainConfig{NominatimUserAgent: "ua", HereKey: "here"}

	chain, descs, err := BuildChain(cfg)
	require.NoError(t, err)

	ids := make([]string, len(chain))
	for i, p := range chain {
		ids[i] = p.ID()
	}
	assert.Equal(t, []string{"nominatim", "here"}, ids, "unconfigured providers drop out, order holds")

	require.Len(t, descs, 6, "descriptors cover skipped providers too")
	present := map[string]bool{}
	for _, d := range descs {
		present[d.ID] = d.CredentialPresent
	}
	assert.True(t, present["nominatim"])
	assert.True(t, present["here"])
	assert.False(t, present["locationiq"])
	assert.False(t, present["mapbox"])
	assert.False(t, present["google"])
	assert.False(t, present["opencage"])
}

func TestBuildChain_CanBeLegitimatelyEmpty(t *testing.T) {
	cfg := ChainConfig{Order: []string{"google", "mapbox"}}

	chain, descs, err := BuildChain(cfg)
	require.NoError(t, err)
	assert.Empty(t, chain)
	assert.Len(t, descs, 2)
}

func TestBuildChain_UnknownProviderIsAnError(t *testing.T) {
	cfg := allCredentials()
	cfg.Order = []string{"nominatim", "bingmaps"}

	_, _, err := BuildChain(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bingmaps")
}

func TestBuildChain_OrderNormalization(t *testing.T) {
	cfg := allCredentials()
	cfg.Order = []string{" Google ", "", "NOMINATIM"}

	chain, _, err := BuildChain(cfg)
	require.NoError(t, err)

	ids := make([]string, len(chain))
	for i, p := range chain {
		ids[i] = p.ID()
	}
	assert.Equal(t, []string{"google", "nominatim"}, ids)
}

func TestBuildChain_NominatimDescriptorCarriesRateLimit(t *testing.T) {
	cfg := ChainConfig{NominatimUserAgent: "ua"}

	_, descs, err := BuildChain(cfg)
	require.NoError(t, err)

	var found bool
	for _, d := range descs {
		if d.ID == "nominatim" {
			found = true
			assert.Equal(t, time.Second, d.RateLimit)
		}
	}
	assert.True(t, found)
}

func TestBuildChain_NominatimMinGapOverride(t *testing.T) {
	cfg := ChainConfig{NominatimUserAgent: "ua", NominatimMinGap: 2 * time.Second}

	_, descs, err := BuildChain(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, descs[0].RateLimit)
}
