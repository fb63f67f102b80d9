package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/skyfield-labs/aeromap/internal/model"
)

// writeShapefile emits supplier points with attribute columns. Shapefile
// DBF strings are capped, so names and addresses get truncated to fit.
func writeShapefile(path string, facility model.Facility, suppliers []model.Supplier) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	fields := []shp.Field{
		shp.StringField("NAME", 80),
		shp.StringField("ADDRESS", 120),
		shp.StringField("FACILITY", 80),
		shp.FloatField("DIST_MI", 12, 2),
		shp.StringField("SOURCE", 20),
		shp.FloatField("CONF", 4, 1),
	}
	if err := w.SetFields(fields); err != nil {
		return eris.Wrap(err, "export: set shapefile fields")
	}

	for _, s := range suppliers {
		idx := w.Write(&shp.Point{X: s.Lon, Y: s.Lat})
		attrs := []any{
			truncate(s.Name, 80),
			truncate(s.Address, 120),
			truncate(facility.Name, 80),
			s.DistanceMiles,
			s.Source,
			s.Confidence,
		}
		for col, v := range attrs {
			if err := w.WriteAttribute(int(idx), col, v); err != nil {
				return eris.Wrapf(err, "export: write shapefile attribute %d", col)
			}
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
