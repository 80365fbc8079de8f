package places

import "math"

const earthRadiusMeters = 6371000

// Distance display units. Fixed per deployment via config.
const (
	UnitMiles  = "miles"
	UnitMeters = "meters"
)

// HaversineMeters computes the great-circle distance between two
// coordinates in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// DisplayDistance converts a raw meter distance into the deployment's
// display unit. Miles round to 2 decimals under 1 mile and 1 decimal at
// or above; other components must reproduce this precision exactly.
func DisplayDistance(meters float64, unit string) float64 {
	if unit == UnitMiles {
		miles := meters * 0.000621371
		if miles < 1 {
			return math.Round(miles*100) / 100
		}
		return math.Round(miles*10) / 10
	}
	return math.Round(meters)
}
