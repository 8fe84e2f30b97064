package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// HardSensors holds the weather- and soil-moisture-derived features.
type HardSensors struct {
	PrecipRollSum7d   float64 `json:"precip_roll_sum_7d" validate:"gte=0"`
	PrecipRollSum30d  float64 `json:"precip_roll_sum_30d" validate:"gte=0"`
	DaysSinceLastRain int     `json:"days_since_last_rain" validate:"gte=0,lte=30"`
	TempMax24h        float64 `json:"temp_max_24h"`
	SoilMoistureRoot  float64 `json:"soil_moisture_root" validate:"gte=0,lte=100"`
}

// SocialSignals holds the complaint-corpus-derived features.
type SocialSignals struct {
	ReportCount       int     `json:"social_report_count" validate:"gte=0"`
	StressIndex       float64 `json:"social_stress_index" validate:"gte=0,lte=1"`
	LeakMentionFlag   int     `json:"leak_mention_flag" validate:"gte=0,lte=1"`
	SentimentPolarity float64 `json:"sentiment_polarity" validate:"gte=-1,lte=1"`
	TopPainKeyword    string  `json:"most_common_pain_keyword" validate:"required"`
}

// ContextFeatures holds the spatial and temporal context features.
type ContextFeatures struct {
	PopulationDensity float64 `json:"population_density" validate:"gt=0"`
	ElevationMeters   float64 `json:"elevation_meters"`
	IsWeekend         int     `json:"is_weekend" validate:"gte=0,lte=1"`
	MonthSin          float64 `json:"month_sin" validate:"gte=-1,lte=1"`
	MonthCos          float64 `json:"month_cos" validate:"gte=-1,lte=1"`
}

// FeatureVector is the complete 15-feature water-stress record. The three
// embedded blocks flatten to a single JSON object, so the wire schema is
// exactly the 15 named features and completeness is compiler-checked rather
// than verified by a runtime key-set diff.
type FeatureVector struct {
	HardSensors
	SocialSignals
	ContextFeatures
}

// MergeVector assembles a FeatureVector from its three typed blocks.
func MergeVector(hard HardSensors, social SocialSignals, ctx ContextFeatures) FeatureVector {
	return FeatureVector{
		HardSensors:     hard,
		SocialSignals:   social,
		ContextFeatures: ctx,
	}
}

// vectorValidator reports field names by their json tag so SchemaError
// entries match the wire schema.
var vectorValidator = newVectorValidator()

func newVectorValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks every feature against its declared range and returns a
// *SchemaError enumerating the offending fields, or nil.
func (v FeatureVector) Validate() error {
	err := vectorValidator.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &SchemaError{Fields: []string{err.Error()}}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return &SchemaError{Fields: fields}
}

// BlockSource records how one block of the vector was obtained.
type BlockSource string

const (
	SourceLive      BlockSource = "live"      // derived from provider/corpus data
	SourceEstimated BlockSource = "estimated" // derived indirectly (precipitation-weighted soil estimate)
	SourceSynthetic BlockSource = "synthetic" // generated entirely
)

// Provenance distinguishes a genuinely live-derived vector from a degraded or
// fully synthetic one. It travels alongside the vector (Kafka headers), not
// inside the 15-feature schema.
type Provenance struct {
	Weather     BlockSource `json:"weather"`
	Soil        BlockSource `json:"soil"`
	Social      BlockSource `json:"social"`
	Scenario    Scenario    `json:"scenario,omitempty"` // set only on total-failure substitution
	At          time.Time   `json:"at"`                 // resolved reference timestamp
	GeneratedAt time.Time   `json:"generated_at"`
}

// Degraded reports whether any block fell back from its primary source.
func (p Provenance) Degraded() bool {
	return p.Scenario != "" ||
		p.Weather != SourceLive || p.Soil != SourceLive || p.Social != SourceLive
}

// VectorID produces a deterministic ID from the request's key fields, so
// replaying the same (point, time) request yields the same ID and downstream
// sinks can deduplicate on conflict.
func VectorID(lat, lon float64, at time.Time) string {
	input := fmt.Sprintf("%.4f|%.4f|%s", lat, lon, at.UTC().Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	return "wsv-" + hex.EncodeToString(hash[:8])
}
