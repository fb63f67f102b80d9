package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/skyfield-labs/aeromap/internal/model"
)

// writeGeoJSON emits a FeatureCollection: one point feature per supplier
// plus the facility itself marked with role=facility.
func writeGeoJSON(path string, facility model.Facility, suppliers []model.Supplier) error {
	features := make([]*geojson.Feature, 0, len(suppliers)+1)

	features = append(features, &geojson.Feature{
		Geometry: geom.NewPointFlat(geom.XY, []float64{facility.Lon, facility.Lat}),
		Properties: map[string]any{
			"role":     "facility",
			"name":     facility.Name,
			"address":  facility.Address,
			"provider": facility.Provider,
		},
	})
	for _, s := range suppliers {
		features = append(features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{s.Lon, s.Lat}),
			Properties: map[string]any{
				"role":           "supplier",
				"name":           s.Name,
				"address":        s.Address,
				"distance_miles": s.DistanceMiles,
				"source":         s.Source,
				"confidence":     s.Confidence,
			},
		})
	}

	fc := geojson.FeatureCollection{Features: features}
	data, err := json.MarshalIndent(&fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}
	return nil
}
