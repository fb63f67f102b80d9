package discovery

import (
	"context"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/skyfield-labs/aeromap/internal/model"
)

// Service runs the supplier search around a geocoded facility.
type Service struct {
	overpass *Overpass
	filters  []string
	dedupeM  float64
}

// NewService creates a discovery service. dedupeM is the proximity
// threshold in meters for collapsing duplicate features.
func NewService(overpass *Overpass, filters []string, dedupeM float64) *Service {
	if dedupeM <= 0 {
		dedupeM = 50
	}
	return &Service{overpass: overpass, filters: filters, dedupeM: dedupeM}
}

// FindSuppliers queries Overpass for tagged features within radiusMiles of
// the facility, scores and deduplicates them, and returns candidates sorted
// by distance.
func (s *Service) FindSuppliers(ctx context.Context, lat, lon, radiusMiles float64) ([]model.Supplier, error) {
	radiusM := radiusMiles * metersPerMile

	elements, err := s.overpass.Around(ctx, lat, lon, radiusM, s.filters)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: overpass query")
	}

	suppliers := make([]model.Supplier, 0, len(elements))
	for _, el := range elements {
		elat, elon, ok := el.Position()
		if !ok {
			continue
		}
		suppliers = append(suppliers, model.Supplier{
			Name:          el.Name(),
			Address:       el.Tags["addr:full"],
			Lat:           elat,
			Lon:           elon,
			DistanceMiles: round2(haversineMiles(lat, lon, elat, elon)),
			Source:        "overpass",
			Confidence:    Score(el.Tags),
		})
	}

	deduped := Deduplicate(suppliers, s.dedupeM)
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].DistanceMiles < deduped[j].DistanceMiles
	})

	zap.L().Info("discovery: supplier search complete",
		zap.Int("raw", len(suppliers)),
		zap.Int("deduped", len(deduped)),
		zap.Float64("radius_miles", radiusMiles),
	)
	return deduped, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
