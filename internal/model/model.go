// Package model holds the shared domain types for facilities and discovered
// suppliers.
package model

import "time"

// Facility is the anchor site a discovery run is centered on.
type Facility struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Provider  string    `json:"provider"` // which geocoding backend located it
	CreatedAt time.Time `json:"created_at"`
}

// Supplier is one deduplicated candidate found near a facility.
type Supplier struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Address       string  `json:"address,omitempty"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	DistanceMiles float64 `json:"distance_miles"`
	Source        string  `json:"source"`
	Confidence    float64 `json:"confidence"`
}
