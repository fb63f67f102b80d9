package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/skyfield-labs/aeromap/internal/model"
)

func writeXLSX(path string, facility model.Facility, suppliers []model.Supplier) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Suppliers")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, h := range csvHeader {
		header.AddCell().Value = h
	}

	for _, s := range suppliers {
		row := sheet.AddRow()
		row.AddCell().Value = facility.Name
		row.AddCell().Value = s.Name
		row.AddCell().Value = s.Address
		row.AddCell().SetFloat(s.Lat)
		row.AddCell().SetFloat(s.Lon)
		row.AddCell().SetFloat(s.DistanceMiles)
		row.AddCell().Value = s.Source
		row.AddCell().SetFloat(s.Confidence)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
