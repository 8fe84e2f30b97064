package domain

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// rainThresholdMM is the minimum daily precipitation that counts as rain for
// the dry-spell computation.
const rainThresholdMM = 1.0

// maxDrySpellDays caps days_since_last_rain at the series length.
const maxDrySpellDays = 30

// defaultTempMaxC is reported when no weather record exists (Mexico City
// year-round average daily maximum).
const defaultTempMaxC = 22.0

// syntheticWeatherSeed fixes the backfill generator so regenerating the same
// window reproduces identical values.
const syntheticWeatherSeed = 42

// WeatherRecord is one day of aggregated weather observations.
type WeatherRecord struct {
	Date          time.Time `json:"date"`
	Precipitation float64   `json:"precipitation"` // mm, summed over the day
	TempMax       float64   `json:"temp_max"`      // °C
	TempMin       float64   `json:"temp_min"`      // °C
	Humidity      float64   `json:"humidity"`      // %, daily mean
}

// DailySeries is an ordered run of daily weather records.
type DailySeries []WeatherRecord

// Normalize returns the series sorted by date and deduplicated by calendar
// day (first record per day wins, matching provider precedence: current
// conditions before forecast).
func (s DailySeries) Normalize() DailySeries {
	out := make(DailySeries, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	seen := make(map[string]bool, len(out))
	dedup := out[:0]
	for _, rec := range out {
		key := rec.Date.UTC().Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		dedup = append(dedup, rec)
	}
	return dedup
}

// Tail returns the most recent n records (the whole series if shorter).
func (s DailySeries) Tail(n int) DailySeries {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// PrecipFeatures are the rolling-window precipitation derivations.
type PrecipFeatures struct {
	RollSum7d         float64
	RollSum30d        float64
	DaysSinceLastRain int
}

// DerivePrecipFeatures computes rolling sums over the trailing 7 and 30
// entries plus the current dry-spell length. An empty series yields zero sums
// and the 30-day long-dry-spell sentinel.
func (s DailySeries) DerivePrecipFeatures() PrecipFeatures {
	if len(s) == 0 {
		return PrecipFeatures{DaysSinceLastRain: maxDrySpellDays}
	}

	var sum30 float64
	for _, rec := range s {
		sum30 += rec.Precipitation
	}
	var sum7 float64
	for _, rec := range s.Tail(7) {
		sum7 += rec.Precipitation
	}

	dry := 0
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Precipitation >= rainThresholdMM {
			break
		}
		dry++
	}
	if dry > maxDrySpellDays {
		dry = maxDrySpellDays
	}

	return PrecipFeatures{
		RollSum7d:         round1(sum7),
		RollSum30d:        round1(sum30),
		DaysSinceLastRain: dry,
	}
}

// MaxTemp24h returns the most recent day's maximum temperature, or the
// regional default when the series is empty.
func (s DailySeries) MaxTemp24h() float64 {
	if len(s) == 0 {
		return defaultTempMaxC
	}
	latest := s[0]
	for _, rec := range s[1:] {
		if rec.Date.After(latest.Date) {
			latest = rec
		}
	}
	return latest.TempMax
}

// IsWetSeason reports whether the month falls in the June–October rainy
// season.
func IsWetSeason(m time.Month) bool {
	return m >= time.June && m <= time.October
}

// SyntheticWeatherHistory generates a seasonally plausible daily series
// starting at start. The generator is seeded with a fixed seed, so the same
// (start, days) window always produces the same records.
func SyntheticWeatherHistory(start time.Time, days int) DailySeries {
	rng := rand.New(rand.NewSource(syntheticWeatherSeed))
	series := make(DailySeries, 0, days)

	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		wet := IsWetSeason(date.Month())

		basePrecip := 1.5
		if wet {
			basePrecip = 8.0
		}
		precip := rng.ExpFloat64() * basePrecip

		baseTemp := 18.0
		if wet {
			baseTemp += 3.0
		}
		tempMax := baseTemp + rng.NormFloat64()*3
		tempMin := tempMax - 10 + rng.NormFloat64()*2

		series = append(series, WeatherRecord{
			Date:          date,
			Precipitation: round1(precip),
			TempMax:       round1(tempMax),
			TempMin:       round1(tempMin),
			Humidity:      math.Floor(40 + rng.Float64()*40),
		})
	}
	return series
}

// BackfillTo30 front-pads a normalized series with synthetic days so it
// covers exactly 30 entries. A series already at or above 30 entries is
// trimmed to its most recent 30.
func BackfillTo30(s DailySeries) DailySeries {
	if len(s) >= 30 {
		return s.Tail(30)
	}

	missing := 30 - len(s)
	var anchor time.Time
	if len(s) > 0 {
		anchor = s[0].Date.AddDate(0, 0, -missing)
	} else {
		anchor = clock.Now().AddDate(0, 0, -29)
	}

	padded := SyntheticWeatherHistory(anchor, missing)
	return append(padded, s...)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
