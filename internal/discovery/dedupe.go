package discovery

import (
	"golang.org/x/text/cases"

	"github.com/skyfield-labs/aeromap/internal/model"
)

var foldCaser = cases.Fold()

// Deduplicate collapses candidates that are within thresholdM meters of an
// already-kept candidate and share a name (case-folded), or where either
// side is unnamed. The higher-confidence record survives a merge.
func Deduplicate(suppliers []model.Supplier, thresholdM float64) []model.Supplier {
	var unique []model.Supplier
	for _, sup := range suppliers {
		matched := false
		for i := range unique {
			u := &unique[i]

			if haversineM(sup.Lat, sup.Lon, u.Lat, u.Lon) >= thresholdM {
				continue
			}
			sameName := foldCaser.String(sup.Name) == foldCaser.String(u.Name) ||
				sup.Name == "Unknown" || u.Name == "Unknown"
			if !sameName {
				continue
			}

			if sup.Confidence > u.Confidence {
				*u = sup
			}
			matched = true
			break
		}
		if !matched {
			unique = append(unique, sup)
		}
	}
	return unique
}
