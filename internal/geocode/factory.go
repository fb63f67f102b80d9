package geocode

import (
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/skyfield-labs/aeromap/internal/geocode/provider"
)

// DefaultOrder is the default fallback order: free and cheap backends first,
// metered ones last.
var DefaultOrder = []string{"nominatim", "locationiq", "opencage", "here", "mapbox", "google"}

// ChainConfig carries the credentials and endpoints needed to build a chain.
type ChainConfig struct {
	Order              []string
	NominatimURL       string
	NominatimUserAgent string
	NominatimMinGap    time.Duration
	LocationIQKey      string
	OpenCageKey        string
	HereKey            string
	MapboxToken        string
	GoogleKey          string
}

// BuildChain constructs the ordered backend chain. Backends whose credentials
// are missing are skipped with a warning, never aborting the rest of the
// chain; the result may legitimately be empty. Unknown ids are an error.
// The returned descriptors cover every configured id, skipped ones included.
func BuildChain(cfg ChainConfig, opts ...provider.Option) ([]provider.Provider, []provider.Descriptor, error) {
	order := cfg.Order
	if len(order) == 0 {
		order = DefaultOrder
	}

	var chain []provider.Provider
	var descriptors []provider.Descriptor

	for _, raw := range order {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" {
			continue
		}

		p, desc, err := buildProvider(id, cfg, opts)
		if err != nil {
			if provider.IsKind(err, provider.KindCredentialMissing) {
				zap.L().Warn("geocode: skipping provider, credentials missing",
					zap.String("provider", id),
					zap.Error(errors.Unwrap(err)),
				)
				descriptors = append(descriptors, desc)
				continue
			}
			return nil, nil, err
		}

		chain = append(chain, p)
		descriptors = append(descriptors, desc)
	}

	return chain, descriptors, nil
}

func buildProvider(id string, cfg ChainConfig, opts []provider.Option) (provider.Provider, provider.Descriptor, error) {
	switch id {
	case "nominatim":
		o := opts
		if cfg.NominatimURL != "" {
			o = append([]provider.Option{provider.WithBaseURL(cfg.NominatimURL)}, opts...)
		}
		if cfg.NominatimMinGap > 0 {
			o = append(o, provider.WithMinGap(cfg.NominatimMinGap))
		}
		p := provider.NewNominatim(cfg.NominatimUserAgent, o...)
		return p, provider.Descriptor{ID: id, CredentialPresent: true, RateLimit: p.MinGap()}, nil

	case "locationiq":
		p, err := provider.NewLocationIQ(cfg.LocationIQKey, opts...)
		if err != nil {
			return nil, provider.Descriptor{ID: id}, err
		}
		return p, provider.Descriptor{ID: id, CredentialPresent: true}, nil

	case "opencage":
		p, err := provider.NewOpenCage(cfg.OpenCageKey, opts...)
		if err != nil {
			return nil, provider.Descriptor{ID: id}, err
		}
		return p, provider.Descriptor{ID: id, CredentialPresent: true}, nil

	case "here":
		p, err := provider.NewHere(cfg.HereKey, opts...)
		if err != nil {
			return nil, provider.Descriptor{ID: id}, err
		}
		return p, provider.Descriptor{ID: id, CredentialPresent: true}, nil

	case "mapbox":
		p, err := provider.NewMapbox(cfg.MapboxToken, opts...)
		if err != nil {
			return nil, provider.Descriptor{ID: id}, err
		}
		return p, provider.Descriptor{ID: id, CredentialPresent: true}, nil

	case "google":
		p, err := provider.NewGoogle(cfg.GoogleKey, opts...)
		if err != nil {
			return nil, provider.Descriptor{ID: id}, err
		}
		return p, provider.Descriptor{ID: id, CredentialPresent: true}, nil

	default:
		return nil, provider.Descriptor{ID: id}, eris.Errorf("geocode: unknown provider %q", id)
	}
}
