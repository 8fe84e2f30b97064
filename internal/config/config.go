package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings. It is populated from environment
// variables (an optional .env file is loaded first) and passed explicitly
// into every component at construction.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Weather provider configuration. An empty API key disables the live
	// weather path; the ingestor then runs on synthetic weather.
	OpenWeatherAPIKey string
	WeatherTimeout    time.Duration

	// Soil-moisture provider configuration (no key required).
	SoilTimeout time.Duration

	// Social corpus configuration. An empty or missing path leaves the
	// corpus absent, which is a handled state.
	CorpusPath string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first,
// without overriding variables already present in the environment.
func Load() (*Config, error) {
	// Best effort: running without a .env file is normal in production.
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	soilTimeout, err := parseDuration("SOIL_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	batchSize, err := parseInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "vector-requests"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "water-stress-vectors"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "stress-ingest"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherTimeout:    weatherTimeout,
		SoilTimeout:       soilTimeout,
		CorpusPath:        os.Getenv("CORPUS_PATH"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitBrokers(value string) []string {
	var brokers []string
	for _, b := range strings.Split(value, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
