package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters_ZeroForSamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{40.7128, -74.0060},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Zero(t, HaversineMeters(p[0], p[1], p[0], p[1]))
	}
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Times Square to the Empire State Building, roughly 1.06 km
	d := HaversineMeters(40.7580, -73.9855, 40.7484, -73.9857)
	assert.InDelta(t, 1068, d, 20)
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := HaversineMeters(40.7128, -74.0060, 51.5074, -0.1278)
	b := HaversineMeters(51.5074, -0.1278, 40.7128, -74.0060)
	assert.InDelta(t, a, b, 1e-6)
}

func TestDisplayDistance_MilesRounding(t *testing.T) {
	// Under 1 mile: 2 decimals
	assert.Equal(t, 0.5, DisplayDistance(804.672, UnitMiles))
	assert.Equal(t, 0.31, DisplayDistance(500, UnitMiles))

	// At or above 1 mile: 1 decimal
	assert.Equal(t, 1.0, DisplayDistance(1609.344, UnitMiles))
	assert.Equal(t, 3.1, DisplayDistance(5000, UnitMiles))
}

func TestDisplayDistance_Meters(t *testing.T) {
	assert.Equal(t, 805.0, DisplayDistance(804.672, UnitMeters))
	assert.Equal(t, 500.0, DisplayDistance(500.4, UnitMeters))
}
