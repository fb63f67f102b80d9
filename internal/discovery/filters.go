package discovery

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultFilters is the built-in Overpass tag filter set, used when no
// filters file is configured. Each entry is a raw Overpass QL tag selector.
var DefaultFilters = []string{
	`"aeroway"`,
	`"landuse"="industrial"`,
	`"building"="industrial"`,
	`"man_made"="works"`,
	`"craft"`,
	`"office"="company"`,
}

type filtersFile struct {
	OverpassFilters []string `yaml:"overpass_filters"`
}

// LoadFilters reads the Overpass tag filters from a YAML file with an
// overpass_filters list. A missing file falls back to DefaultFilters so a
// bare checkout still works.
func LoadFilters(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultFilters, nil
		}
		return nil, eris.Wrapf(err, "discovery: read filters %s", path)
	}

	var f filtersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "discovery: parse filters %s", path)
	}
	if len(f.OverpassFilters) == 0 {
		return nil, eris.Errorf("discovery: %s has no overpass_filters", path)
	}
	return f.OverpassFilters, nil
}
