package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVector() FeatureVector {
	return MergeVector(
		HardSensors{
			PrecipRollSum7d:   12.5,
			PrecipRollSum30d:  48.0,
			DaysSinceLastRain: 3,
			TempMax24h:        24.5,
			SoilMoistureRoot:  38.0,
		},
		SocialSignals{
			ReportCount:       12,
			StressIndex:       0.45,
			LeakMentionFlag:   1,
			SentimentPolarity: -0.3,
			TopPainKeyword:    "sin agua",
		},
		ContextFeatures{
			PopulationDensity: 9500,
			ElevationMeters:   2250,
			IsWeekend:         0,
			MonthSin:          1.0,
			MonthCos:          0.0,
		},
	)
}

func TestFeatureVectorValidate(t *testing.T) {
	t.Run("valid vector passes", func(t *testing.T) {
		require.NoError(t, validVector().Validate())
	})

	t.Run("out-of-range fields are reported by wire name", func(t *testing.T) {
		v := validVector()
		v.DaysSinceLastRain = 31
		v.StressIndex = 1.5
		v.PopulationDensity = 0

		err := v.Validate()
		require.Error(t, err)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		joined := strings.Join(schemaErr.Fields, "; ")
		assert.Contains(t, joined, "days_since_last_rain")
		assert.Contains(t, joined, "social_stress_index")
		assert.Contains(t, joined, "population_density")
	})

	t.Run("missing keyword fails required", func(t *testing.T) {
		v := validVector()
		v.TopPainKeyword = ""

		err := v.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "most_common_pain_keyword")
	})

	t.Run("negative sentiment within range passes", func(t *testing.T) {
		v := validVector()
		v.SentimentPolarity = -1.0
		require.NoError(t, v.Validate())
	})
}

func TestFeatureVectorJSONShape(t *testing.T) {
	data, err := json.Marshal(validVector())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	expected := []string{
		"precip_roll_sum_7d", "precip_roll_sum_30d", "days_since_last_rain",
		"temp_max_24h", "soil_moisture_root",
		"social_report_count", "social_stress_index", "leak_mention_flag",
		"sentiment_polarity", "most_common_pain_keyword",
		"population_density", "elevation_meters", "is_weekend",
		"month_sin", "month_cos",
	}

	assert.Len(t, fields, len(expected), "vector must flatten to exactly the 15 features")
	for _, name := range expected {
		assert.Contains(t, fields, name)
	}
}

func TestVectorID(t *testing.T) {
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, VectorID(19.4326, -99.1332, at), VectorID(19.4326, -99.1332, at))
	})

	t.Run("prefixed", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(VectorID(19.4326, -99.1332, at), "wsv-"))
	})

	t.Run("distinct inputs produce distinct IDs", func(t *testing.T) {
		base := VectorID(19.4326, -99.1332, at)
		assert.NotEqual(t, base, VectorID(19.4327, -99.1332, at))
		assert.NotEqual(t, base, VectorID(19.4326, -99.1332, at.Add(time.Second)))
	})

	t.Run("coordinates beyond four decimals collapse", func(t *testing.T) {
		assert.Equal(t,
			VectorID(19.43261, -99.13321, at),
			VectorID(19.43262, -99.13322, at),
		)
	})
}

func TestProvenanceDegraded(t *testing.T) {
	live := Provenance{Weather: SourceLive, Soil: SourceLive, Social: SourceLive}
	assert.False(t, live.Degraded())

	estimated := live
	estimated.Soil = SourceEstimated
	assert.True(t, estimated.Degraded())

	scenario := live
	scenario.Scenario = ScenarioDry
	assert.True(t, scenario.Degraded())
}
