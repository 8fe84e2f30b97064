// Command vectorcheck performs offline integrity checks on the vector
// assembly path: schema conformance of assembled vectors, scenario preset
// validity, precipitation derivations, and ID determinism. It runs entirely
// without network access or Kafka, so it is suitable as a pre-deploy smoke
// check.
//
// Usage:
//
//	go run ./cmd/vectorcheck [-samples 200] [-corpus complaints.csv]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aquahub/water-stress-ingest/internal/corpus"
	"github.com/aquahub/water-stress-ingest/internal/domain"
	"github.com/aquahub/water-stress-ingest/internal/ingest"
	"github.com/aquahub/water-stress-ingest/internal/observability"
	"github.com/aquahub/water-stress-ingest/internal/sentiment"
)

// samplePoints spans the metro core, its boroughs, and out-of-metro points.
var samplePoints = []struct{ lat, lon float64 }{
	{19.35, -99.16}, // coyoacán
	{19.44, -99.14}, // cuauhtémoc
	{19.36, -99.05}, // iztapalapa
	{19.29, -99.17}, // tlalpan
	{19.50, -99.10}, // gustavo a. madero
	{19.55, -99.25}, // metro core, no borough
	{20.67, -103.35}, // outside the metro core
	{25.67, -100.31},
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	samples := flag.Int("samples", 200, "number of assembled vectors per sample point")
	corpusPath := flag.String("corpus", "", "optional complaint CSV to exercise live social scoring")
	flag.Parse()

	if code := run(*samples, *corpusPath); code != 0 {
		os.Exit(code)
	}
}

func run(samples int, corpusPath string) int {
	// Fix the clock so timestamp defaulting and IDs are reproducible.
	refTime := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(refTime))
	defer domain.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var socialCorpus ingest.SocialCorpus
	if corpusPath != "" {
		c, err := corpus.Load(corpusPath, sentiment.NewLexiconScorer(), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load corpus: %v\n", err)
			return 1
		}
		socialCorpus = c
	}

	fmt.Println("=== Water Stress Vector Integrity Check ===")
	fmt.Println()

	phases := []*phase{
		validateAssembly(samples, refTime, socialCorpus, logger),
		validateScenarios(refTime),
		validatePrecipDerivations(),
		validateDeterminism(refTime),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nCheck FAILED.")
	return 1
}

// ── Phase 1: Assembly ──
// Assembles vectors offline (no weather or soil source) across the sample
// points and verifies every one passes schema validation with coherent
// provenance.

func validateAssembly(samples int, refTime time.Time, socialCorpus ingest.SocialCorpus, logger *slog.Logger) *phase {
	p := &phase{name: "Phase 1: Offline Assembly (schema)"}

	metrics := observability.NewMetricsForTesting()
	ing := ingest.NewIngestor(nil, nil, socialCorpus, metrics, logger,
		ingest.WithRand(rand.New(rand.NewSource(1))))

	ctx := context.Background()
	for _, pt := range samplePoints {
		for n := 0; n < samples; n++ {
			at := refTime.AddDate(0, 0, -n%30)
			vec, prov := ing.GetVector(ctx, pt.lat, pt.lon, at)

			if err := vec.Validate(); err != nil {
				p.errorf("point (%.2f, %.2f) sample %d: %v", pt.lat, pt.lon, n, err)
			}
			if prov.Weather != domain.SourceSynthetic {
				p.errorf("point (%.2f, %.2f): weather provenance %q without a source", pt.lat, pt.lon, prov.Weather)
			}
			if prov.Soil != domain.SourceEstimated {
				p.errorf("point (%.2f, %.2f): soil provenance %q without a source", pt.lat, pt.lon, prov.Soil)
			}
			if !prov.At.Equal(at) {
				p.errorf("point (%.2f, %.2f): provenance At %s, want %s", pt.lat, pt.lon, prov.At, at)
			}
			if !prov.Degraded() {
				p.errorf("point (%.2f, %.2f): sourceless vector not marked degraded", pt.lat, pt.lon)
			}
		}
	}
	return p
}

// ── Phase 2: Scenario Presets ──
// Every scenario draw must pass schema validation and stay inside its band.

func validateScenarios(refTime time.Time) *phase {
	p := &phase{name: "Phase 2: Scenario Presets"}

	rng := rand.New(rand.NewSource(2))
	for _, sc := range []domain.Scenario{domain.ScenarioNormal, domain.ScenarioDry, domain.ScenarioCrisis} {
		for n := 0; n < 500; n++ {
			vec := sc.Vector(refTime, rng)
			if err := vec.Validate(); err != nil {
				p.errorf("scenario %s draw %d: %v", sc, n, err)
			}
			switch sc {
			case domain.ScenarioCrisis:
				if vec.StressIndex < 0.7 {
					p.errorf("crisis draw %d: stress index %v below 0.7", n, vec.StressIndex)
				}
				if vec.LeakMentionFlag != 1 {
					p.errorf("crisis draw %d: leak flag not set", n)
				}
			case domain.ScenarioNormal:
				if vec.StressIndex > 0.2 {
					p.errorf("normal draw %d: stress index %v above 0.2", n, vec.StressIndex)
				}
			}
		}
	}
	return p
}

// ── Phase 3: Precipitation Derivations ──

func validatePrecipDerivations() *phase {
	p := &phase{name: "Phase 3: Precipitation Derivations"}

	base := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	series := make(domain.DailySeries, 0, 12)
	for i := 0; i < 12; i++ {
		precip := 0.0
		if i == 4 {
			precip = 5.0
		}
		series = append(series, domain.WeatherRecord{Date: base.AddDate(0, 0, i), Precipitation: precip})
	}

	feats := series.DerivePrecipFeatures()
	if feats.DaysSinceLastRain != 7 {
		p.errorf("dry spell: got %d, want 7", feats.DaysSinceLastRain)
	}
	if feats.RollSum7d != 0.0 {
		p.errorf("7d sum: got %v, want 0.0", feats.RollSum7d)
	}
	if feats.RollSum30d != 5.0 {
		p.errorf("30d sum: got %v, want 5.0", feats.RollSum30d)
	}

	empty := domain.DailySeries{}.DerivePrecipFeatures()
	if empty.DaysSinceLastRain != 30 || empty.RollSum7d != 0 || empty.RollSum30d != 0 {
		p.errorf("empty series: got %+v, want zero sums and 30-day dry spell", empty)
	}

	return p
}

// ── Phase 4: Determinism ──

func validateDeterminism(refTime time.Time) *phase {
	p := &phase{name: "Phase 4: Determinism (IDs, backfill)"}

	a := domain.VectorID(19.4326, -99.1332, refTime)
	b := domain.VectorID(19.4326, -99.1332, refTime)
	if a != b {
		p.errorf("vector ID not stable: %s vs %s", a, b)
	}
	if c := domain.VectorID(19.4326, -99.1333, refTime); c == a {
		p.errorf("vector ID collision across distinct points: %s", c)
	}

	start := refTime.AddDate(0, 0, -29)
	h1 := domain.SyntheticWeatherHistory(start, 30)
	h2 := domain.SyntheticWeatherHistory(start, 30)
	if len(h1) != 30 || len(h2) != 30 {
		p.errorf("synthetic history length: %d and %d, want 30", len(h1), len(h2))
	}
	for i := range h1 {
		if h1[i] != h2[i] {
			p.errorf("synthetic history diverged at day %d: %+v vs %+v", i, h1[i], h2[i])
			break
		}
	}

	return p
}
