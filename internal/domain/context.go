package domain

import (
	"math"
	"math/rand"
	"time"
)

// metroCore is the rectangle treated as central Mexico City for the density
// heuristic.
var metroCore = AreaBox{Name: "cdmx core", LatMin: 19.2, LatMax: 19.6, LonMin: -99.3, LonMax: -98.9}

// baseElevationM is the reference elevation of the Valley of Mexico.
const baseElevationM = 2240.0

// DeriveContext computes the spatial/temporal context block. Population
// density and elevation are heuristic stand-ins for a real geodata service:
// randomized within a region-specific band from the injected source. Weekend
// flag and the cyclical month encoding come from the reference timestamp.
func DeriveContext(lat, lon float64, at time.Time, rng *rand.Rand) ContextFeatures {
	var density float64
	if metroCore.Contains(lat, lon) {
		density = 8000 + rng.Float64()*7000
	} else {
		density = 1000 + rng.Float64()*4000
	}

	elevation := round1(baseElevationM + (-200 + rng.Float64()*500))

	weekend := 0
	if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
		weekend = 1
	}

	sin, cos := MonthCycle(at.Month())

	return ContextFeatures{
		PopulationDensity: density,
		ElevationMeters:   elevation,
		IsWeekend:         weekend,
		MonthSin:          sin,
		MonthCos:          cos,
	}
}

// MonthCycle encodes the month on the unit circle, rounded to 4 decimals.
func MonthCycle(m time.Month) (sin, cos float64) {
	angle := 2 * math.Pi * float64(m) / 12
	return round4(math.Sin(angle)), round4(math.Cos(angle))
}
