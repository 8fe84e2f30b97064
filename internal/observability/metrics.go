package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion service.
type Metrics struct {
	VectorsRequested prometheus.Counter
	VectorsProduced  prometheus.Counter
	RequestErrors    prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Source degradation metrics.
	SourceFallbacks    *prometheus.CounterVec   // labels: source={weather,soil,social}
	ScenarioFallbacks  *prometheus.CounterVec   // labels: scenario={normal,dry,crisis}
	ProviderDuration   *prometheus.HistogramVec // labels: provider={weather,soil}
	CorpusRecords      prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		VectorsRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stress_ingest",
			Name:      "vectors_requested_total",
			Help:      "Total vector requests read from the source topic.",
		}),
		VectorsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stress_ingest",
			Name:      "vectors_produced_total",
			Help:      "Total feature vectors written to the sink topic.",
		}),
		RequestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stress_ingest",
			Name:      "request_errors_total",
			Help:      "Total malformed vector requests skipped.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stress_ingest",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stress_ingest",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stress_ingest",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete extract-assemble-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SourceFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stress_ingest",
			Name:      "source_fallbacks_total",
			Help:      "Per-source fallbacks to estimated or synthetic data.",
		}, []string{"source"}),
		ScenarioFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stress_ingest",
			Name:      "scenario_fallbacks_total",
			Help:      "Total-failure substitutions by scenario profile.",
		}, []string{"scenario"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stress_ingest",
			Name:      "provider_request_duration_seconds",
			Help:      "Outbound provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"provider"}),
		CorpusRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stress_ingest",
			Name:      "corpus_records",
			Help:      "Number of social records loaded at startup (0 = corpus absent).",
		}),
	}

	prometheus.MustRegister(
		m.VectorsRequested,
		m.VectorsProduced,
		m.RequestErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SourceFallbacks,
		m.ScenarioFallbacks,
		m.ProviderDuration,
		m.CorpusRecords,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		VectorsRequested:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stress_ingest", Name: "vectors_requested_total"}),
		VectorsProduced:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stress_ingest", Name: "vectors_produced_total"}),
		RequestErrors:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stress_ingest", Name: "request_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "stress_ingest", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "stress_ingest", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "stress_ingest", Name: "batch_processing_duration_seconds"}),
		SourceFallbacks:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "stress_ingest", Name: "source_fallbacks_total"}, []string{"source"}),
		ScenarioFallbacks:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "stress_ingest", Name: "scenario_fallbacks_total"}, []string{"scenario"}),
		ProviderDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "stress_ingest", Name: "provider_request_duration_seconds"}, []string{"provider"}),
		CorpusRecords:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "stress_ingest", Name: "corpus_records"}),
	}
}
