package domain

import (
	"math/rand"
	"time"
)

// Scenario names a synthetic-data preset used only when live vector assembly
// fails entirely.
type Scenario string

const (
	ScenarioNormal Scenario = "normal"
	ScenarioDry    Scenario = "dry"
	ScenarioCrisis Scenario = "crisis"
)

var scenarios = []Scenario{ScenarioNormal, ScenarioDry, ScenarioCrisis}

// RandomScenario picks one of the three presets.
func RandomScenario(rng *rand.Rand) Scenario {
	return scenarios[rng.Intn(len(scenarios))]
}

// Vector draws a complete, internally consistent feature vector from the
// scenario's value bands. Every field stays inside its declared range, so a
// scenario vector always passes Validate.
func (s Scenario) Vector(at time.Time, rng *rand.Rand) FeatureVector {
	monthSin, monthCos := MonthCycle(at.Month())
	weekend := rng.Intn(2)

	ctx := ContextFeatures{
		PopulationDensity: 8000 + rng.Float64()*7000,
		ElevationMeters:   round1(2100 + rng.Float64()*300),
		IsWeekend:         weekend,
		MonthSin:          monthSin,
		MonthCos:          monthCos,
	}

	switch s {
	case ScenarioDry:
		leak := rng.Intn(2)
		keywords := []string{"sin agua", "tandeo"}
		return MergeVector(
			HardSensors{
				PrecipRollSum7d:   round1(rng.Float64() * 5),
				PrecipRollSum30d:  round1(5 + rng.Float64()*20),
				DaysSinceLastRain: 10 + rng.Intn(16), // 10–25
				TempMax24h:        round1(26 + rng.Float64()*6),
				SoilMoistureRoot:  round1(10 + rng.Float64()*15),
			},
			SocialSignals{
				ReportCount:       10 + rng.Intn(21), // 10–30
				StressIndex:       round2(0.4 + rng.Float64()*0.3),
				LeakMentionFlag:   leak,
				SentimentPolarity: round2(-0.6 + rng.Float64()*0.5),
				TopPainKeyword:    keywords[rng.Intn(len(keywords))],
			},
			ctx,
		)

	case ScenarioCrisis:
		ctx.PopulationDensity = 12000 + rng.Float64()*6000
		return MergeVector(
			HardSensors{
				PrecipRollSum7d:   0.0,
				PrecipRollSum30d:  round1(rng.Float64() * 8),
				DaysSinceLastRain: 25 + rng.Intn(6), // 25–30, capped at the schema maximum
				TempMax24h:        round1(30 + rng.Float64()*6),
				SoilMoistureRoot:  round1(5 + rng.Float64()*10),
			},
			SocialSignals{
				ReportCount:       40 + rng.Intn(61), // 40–100
				StressIndex:       round2(0.7 + rng.Float64()*0.3),
				LeakMentionFlag:   1,
				SentimentPolarity: round2(-0.9 + rng.Float64()*0.5),
				TopPainKeyword:    "sin agua",
			},
			ctx,
		)

	default: // ScenarioNormal
		return MergeVector(
			HardSensors{
				PrecipRollSum7d:   round1(20 + rng.Float64()*30),
				PrecipRollSum30d:  round1(80 + rng.Float64()*70),
				DaysSinceLastRain: rng.Intn(4), // 0–3
				TempMax24h:        round1(20 + rng.Float64()*6),
				SoilMoistureRoot:  round1(35 + rng.Float64()*25),
			},
			SocialSignals{
				ReportCount:       rng.Intn(6), // 0–5
				StressIndex:       round2(rng.Float64() * 0.2),
				LeakMentionFlag:   0,
				SentimentPolarity: round2(-0.2 + rng.Float64()*0.7),
				TopPainKeyword:    NoKeyword,
			},
			ctx,
		)
	}
}
