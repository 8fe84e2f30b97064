package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquahub/water-stress-ingest/internal/adapter/httpadapter"
	kafkaadapter "github.com/aquahub/water-stress-ingest/internal/adapter/kafka"
	"github.com/aquahub/water-stress-ingest/internal/adapter/nasapower"
	"github.com/aquahub/water-stress-ingest/internal/adapter/openweather"
	"github.com/aquahub/water-stress-ingest/internal/config"
	"github.com/aquahub/water-stress-ingest/internal/corpus"
	"github.com/aquahub/water-stress-ingest/internal/ingest"
	"github.com/aquahub/water-stress-ingest/internal/observability"
	"github.com/aquahub/water-stress-ingest/internal/pipeline"
	"github.com/aquahub/water-stress-ingest/internal/sentiment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Weather is feature-flagged by the presence of an API key. Without one
	// the ingestor runs on synthetic weather, which is a supported mode.
	var weather ingest.WeatherSource
	if cfg.OpenWeatherAPIKey != "" {
		weather = openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.WeatherTimeout, metrics, logger)
		logger.Info("live weather enabled", "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("live weather disabled, using synthetic history")
	}

	soil := nasapower.NewClient(cfg.SoilTimeout, metrics, logger)

	// Corpus absence is non-fatal: social signals fall back to synthetic.
	var socialCorpus ingest.SocialCorpus
	if cfg.CorpusPath != "" {
		c, err := corpus.Load(cfg.CorpusPath, sentiment.NewLexiconScorer(), logger)
		if err != nil {
			logger.Warn("corpus load failed, continuing without social data",
				"path", cfg.CorpusPath, "error", err)
		} else {
			socialCorpus = c
			metrics.CorpusRecords.Set(float64(c.Len()))
			logger.Info("corpus loaded", "path", cfg.CorpusPath, "records", c.Len())
		}
	} else {
		logger.Info("no corpus configured, social signals will be synthetic")
	}

	ingestor := ingest.NewIngestor(weather, soil, socialCorpus, metrics, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	builder := pipeline.NewBuilder(ingestor)

	p := pipeline.New(reader, builder, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingestion pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
