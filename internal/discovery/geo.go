package discovery

import "math"

const (
	earthRadiusM  = 6371000.0
	metersPerMile = 1609.34
)

// haversineM returns the great-circle distance in meters between two points.
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// haversineMiles returns the great-circle distance in miles.
func haversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineM(lat1, lon1, lat2, lon2) / metersPerMile
}
