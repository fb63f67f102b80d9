package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/skyfield-labs/aeromap/internal/model"
)

var csvHeader = []string{
	"facility", "name", "address", "lat", "lon", "distance_miles", "source", "confidence",
}

func writeCSV(path string, facility model.Facility, suppliers []model.Supplier) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, s := range suppliers {
		row := []string{
			facility.Name,
			s.Name,
			s.Address,
			strconv.FormatFloat(s.Lat, 'f', -1, 64),
			strconv.FormatFloat(s.Lon, 'f', -1, 64),
			strconv.FormatFloat(s.DistanceMiles, 'f', 2, 64),
			s.Source,
			strconv.FormatFloat(s.Confidence, 'f', 1, 64),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return f.Close()
}
