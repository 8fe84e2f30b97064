// Package ingest assembles complete water-stress feature vectors from the
// weather, soil, and social sources. Assembly never fails: each source has a
// fallback tier, and a vector that still cannot be produced is substituted
// with a synthetic scenario vector.
package ingest

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/aquahub/water-stress-ingest/internal/domain"
	"github.com/aquahub/water-stress-ingest/internal/observability"
)

// WeatherSource provides the live daily weather series for a point. The
// returned series may cover fewer than 30 days; the ingestor backfills it.
type WeatherSource interface {
	FetchDailyHistory(ctx context.Context, lat, lon float64) (domain.DailySeries, error)
}

// SoilSource provides a direct root-zone soil moisture observation, as a
// percentage in [0,100].
type SoilSource interface {
	FetchRootZoneMoisture(ctx context.Context, lat, lon float64, at time.Time) (float64, error)
}

// SocialCorpus serves filtered views of the complaint corpus.
type SocialCorpus interface {
	Len() int
	Query(at time.Time, area string) []domain.SocialRecord
}

// Ingestor assembles feature vectors. Any of its sources may be nil, which is
// treated as that source being permanently unavailable.
type Ingestor struct {
	weather WeatherSource
	soil    SoilSource
	corpus  SocialCorpus
	metrics *observability.Metrics
	logger  *slog.Logger
	rng     *rand.Rand
}

// Option customizes an Ingestor.
type Option func(*Ingestor)

// WithRand injects the random source used for scenario substitution and the
// context/social heuristics. Tests pass a seeded source for deterministic
// output.
func WithRand(rng *rand.Rand) Option {
	return func(i *Ingestor) {
		i.rng = rng
	}
}

// NewIngestor wires the three sources into an assembler.
func NewIngestor(weather WeatherSource, soil SoilSource, corpus SocialCorpus, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Ingestor {
	i := &Ingestor{
		weather: weather,
		soil:    soil,
		corpus:  corpus,
		metrics: metrics,
		logger:  logger,
		rng:     rand.New(&lockedSource{src: rand.NewSource(domain.Now().UnixNano())}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// GetVector assembles the 15-feature vector for a point at the given
// reference time (zero means now). It always returns a schema-valid vector;
// the provenance records which blocks degraded and whether the whole vector
// is a scenario substitute.
func (i *Ingestor) GetVector(ctx context.Context, lat, lon float64, at time.Time) (domain.FeatureVector, domain.Provenance) {
	if at.IsZero() {
		at = domain.Now()
	}

	series, weatherSource := i.weatherSeries(ctx, lat, lon, at)
	precip := series.DerivePrecipFeatures()

	soilPct, soilSource := i.soilMoisture(ctx, lat, lon, at, series)

	hard := domain.HardSensors{
		PrecipRollSum7d:   precip.RollSum7d,
		PrecipRollSum30d:  precip.RollSum30d,
		DaysSinceLastRain: precip.DaysSinceLastRain,
		TempMax24h:        series.MaxTemp24h(),
		SoilMoistureRoot:  soilPct,
	}

	social, socialSource := i.socialSignals(lat, lon, at)

	vector := domain.MergeVector(hard, social, domain.DeriveContext(lat, lon, at, i.rng))
	prov := domain.Provenance{
		Weather:     weatherSource,
		Soil:        soilSource,
		Social:      socialSource,
		At:          at,
		GeneratedAt: domain.Now(),
	}

	if err := vector.Validate(); err != nil {
		scenario := domain.RandomScenario(i.rng)
		i.logger.Error("vector assembly produced invalid vector, substituting scenario",
			"lat", lat, "lon", lon, "scenario", scenario, "error", err)
		i.metrics.ScenarioFallbacks.WithLabelValues(string(scenario)).Inc()

		vector = scenario.Vector(at, i.rng)
		prov = domain.Provenance{
			Weather:     domain.SourceSynthetic,
			Soil:        domain.SourceSynthetic,
			Social:      domain.SourceSynthetic,
			Scenario:    scenario,
			At:          at,
			GeneratedAt: domain.Now(),
		}
	}

	return vector, prov
}

// weatherSeries returns a full 30-day series. A live fetch that succeeds is
// backfilled with synthetic days as needed and still counts as live; a failed
// or absent source yields an entirely synthetic window.
func (i *Ingestor) weatherSeries(ctx context.Context, lat, lon float64, at time.Time) (domain.DailySeries, domain.BlockSource) {
	if i.weather == nil {
		i.metrics.SourceFallbacks.WithLabelValues("weather").Inc()
		return domain.SyntheticWeatherHistory(at.AddDate(0, 0, -29), 30), domain.SourceSynthetic
	}

	series, err := i.weather.FetchDailyHistory(ctx, lat, lon)
	if err != nil {
		i.logger.Warn("weather fetch failed, using synthetic history",
			"lat", lat, "lon", lon, "error", err)
		i.metrics.SourceFallbacks.WithLabelValues("weather").Inc()
		return domain.SyntheticWeatherHistory(at.AddDate(0, 0, -29), 30), domain.SourceSynthetic
	}

	return domain.BackfillTo30(series), domain.SourceLive
}

// soilMoisture returns the root-zone percentage, falling back from the direct
// observation to the precipitation-weighted estimate over the given series.
func (i *Ingestor) soilMoisture(ctx context.Context, lat, lon float64, at time.Time, series domain.DailySeries) (float64, domain.BlockSource) {
	if i.soil != nil {
		pct, err := i.soil.FetchRootZoneMoisture(ctx, lat, lon, at)
		if err == nil {
			return pct, domain.SourceLive
		}
		i.logger.Warn("soil moisture fetch failed, estimating from precipitation",
			"lat", lat, "lon", lon, "error", err)
	}

	i.metrics.SourceFallbacks.WithLabelValues("soil").Inc()
	return domain.EstimateSoilMoisture(series), domain.SourceEstimated
}

// socialSignals scores the corpus records inside the query window, narrowed
// to the point's borough when that leaves anything to score. An absent or
// empty corpus yields synthetic signals.
func (i *Ingestor) socialSignals(lat, lon float64, at time.Time) (domain.SocialSignals, domain.BlockSource) {
	if i.corpus == nil || i.corpus.Len() == 0 {
		i.metrics.SourceFallbacks.WithLabelValues("social").Inc()
		return domain.SyntheticSocialSignals(i.rng), domain.SourceSynthetic
	}

	area, _ := domain.ResolveArea(lat, lon)
	records := i.corpus.Query(at, area)
	if len(records) == 0 {
		i.metrics.SourceFallbacks.WithLabelValues("social").Inc()
		return domain.SyntheticSocialSignals(i.rng), domain.SourceSynthetic
	}

	return domain.ScoreSocialSignals(records), domain.SourceLive
}

// lockedSource makes the shared random source safe for concurrent GetVector
// calls.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}
