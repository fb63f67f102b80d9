// Package export writes supplier search results to interchange formats
// consumed by GIS and spreadsheet tooling.
package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/skyfield-labs/aeromap/internal/model"
)

// Format is an output file format.
type Format string

const (
	FormatCSV       Format = "csv"
	FormatGeoJSON   Format = "geojson"
	FormatShapefile Format = "shapefile"
	FormatXLSX      Format = "xlsx"
)

// ParseFormat validates a format name from config or a CLI flag.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatGeoJSON, FormatShapefile, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want csv, geojson, shapefile, or xlsx)", s)
	}
}

// Write renders the facility and its suppliers to path in the given format.
func Write(format Format, path string, facility model.Facility, suppliers []model.Supplier) error {
	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(path, facility, suppliers)
	case FormatGeoJSON:
		err = writeGeoJSON(path, facility, suppliers)
	case FormatShapefile:
		err = writeShapefile(path, facility, suppliers)
	case FormatXLSX:
		err = writeXLSX(path, facility, suppliers)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
	if err != nil {
		return err
	}

	zap.L().Info("export: wrote supplier results",
		zap.String("format", string(format)),
		zap.String("path", path),
		zap.Int("suppliers", len(suppliers)),
	)
	return nil
}
