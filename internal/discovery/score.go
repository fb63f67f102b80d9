package discovery

import "strings"

// aerospaceKeywords mark names that strongly suggest an aerospace supplier.
var aerospaceKeywords = []string{"aero", "avionics", "composite", "defence", "machining"}

// Score assigns a confidence heuristic from a feature's tags: strong
// aerospace keywords in the name score 0.9, generically industrial features
// 0.7, everything else 0.5.
func Score(tags map[string]string) float64 {
	name := strings.ToLower(tags["name"])
	for _, k := range aerospaceKeywords {
		if strings.Contains(name, k) {
			return 0.9
		}
	}
	if _, ok := tags["industrial"]; ok {
		return 0.7
	}
	if _, ok := tags["building"]; ok {
		return 0.7
	}
	return 0.5
}
