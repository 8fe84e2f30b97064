// Package domain models the water-stress feature vector and the rules that
// derive it from weather, soil-moisture, and social-complaint data.
//
// # Feature Schema
//
// Every vector carries exactly 15 features, grouped into three blocks:
//
//	Hard sensors:  precip_roll_sum_7d, precip_roll_sum_30d,
//	               days_since_last_rain, temp_max_24h, soil_moisture_root
//	Soft sensors:  social_report_count, social_stress_index,
//	               leak_mention_flag, sentiment_polarity,
//	               most_common_pain_keyword
//	Context:       population_density, elevation_meters, is_weekend,
//	               month_sin, month_cos
//
// Ranges are encoded as validator struct tags on [FeatureVector] and checked
// by [FeatureVector.Validate] before a vector leaves the assembler.
//
// # Weather Data Conventions
//
// Daily weather records aggregate sub-daily provider samples: precipitation
// is summed, temperature takes the max/min, humidity the mean. Series are
// ordered by date and deduplicated by calendar day. A day counts as rain when
// it received at least 1mm of precipitation; days_since_last_rain counts the
// consecutive rain-free days ending at the most recent record, capped at 30.
//
// Synthetic backfill uses Mexico City seasonality: the wet season runs June
// through October (higher precipitation mean and variance), the dry season
// November through May. The backfill generator is seeded with a fixed seed so
// regenerating the same window yields identical values.
//
// # Soil Moisture Conventions
//
// The primary observation is a root-zone profile moisture fraction in [0,1];
// -999.0 is the provider's fill value for missing days and is never a real
// reading. Fractions convert to percentages clamped to [0,100]. The fallback
// estimator weights the last five days of precipitation (1.0, 0.8, 0.6, 0.4,
// 0.2, most recent first) against a 50mm/5-day saturation threshold and
// clamps to [5,100].
//
// # Social Signal Conventions
//
// Complaint text is matched against two fixed Spanish keyword families:
// distress phrases ("sin agua", "tandeo", ...) and leak phrases ("fuga",
// "tubo roto", ...). Matching is case-insensitive substring scanning.
// Coordinates resolve to a borough through an ordered list of bounding
// boxes; the first containing box wins and boxes are assumed non-overlapping.
// Area narrowing is opportunistic: a resolved area only filters the record
// set when the narrowed set is non-empty.
//
// # Scenario Presets
//
// Three synthetic scenarios (normal, dry, crisis) define internally
// consistent value ranges for all 15 features. They are used only when live
// assembly fails entirely; a crisis vector always has zero 7-day
// precipitation, a stress index of at least 0.7, and a leak flag of 1.
//
// # ID Generation
//
// Vector IDs are deterministic SHA-256 hashes of lat|lon|reference-time, so
// replaying the same request produces the same ID and downstream consumers
// can upsert idempotently. See [VectorID].
package domain
