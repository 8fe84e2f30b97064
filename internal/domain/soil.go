package domain

// soilSaturationMM is the 5-day precipitation total treated as fully
// saturated soil by the fallback estimator.
const soilSaturationMM = 50.0

// defaultSoilMoisturePct is reported when neither an observation nor a
// weather series is available (typical Valley of Mexico root-zone value).
const defaultSoilMoisturePct = 25.0

// soilDecayWeights weight the last five days of precipitation, most recent
// day first.
var soilDecayWeights = [...]float64{1.0, 0.8, 0.6, 0.4, 0.2}

// SoilMoistureFromFraction converts a root-zone moisture fraction in [0,1]
// to a percentage clamped to [0,100].
func SoilMoistureFromFraction(fraction float64) float64 {
	return round1(clampFloat(fraction*100, 0, 100))
}

// EstimateSoilMoisture derives a root-zone moisture percentage from recent
// precipitation when no direct observation is available. Recent rain counts
// more than older rain; the result is normalized against the saturation
// threshold and clamped to [5,100]. An empty series yields the regional
// default.
func EstimateSoilMoisture(series DailySeries) float64 {
	if len(series) == 0 {
		return defaultSoilMoisturePct
	}

	recent := series.Tail(len(soilDecayWeights))
	var weighted float64
	for i := 0; i < len(recent); i++ {
		// recent is ordered oldest→newest; weight index 0 belongs to the
		// newest day.
		day := recent[len(recent)-1-i]
		weighted += day.Precipitation * soilDecayWeights[i]
	}

	pct := weighted / soilSaturationMM * 100
	return round1(clampFloat(pct, 5, 100))
}
