// Package nasapower reads root-zone soil moisture from the NASA POWER
// agroclimatology API (GWETPROF, a daily profile-moisture fraction; no API
// key required).
package nasapower

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aquahub/water-stress-ingest/internal/adapter/httpx"
	"github.com/aquahub/water-stress-ingest/internal/domain"
	"github.com/aquahub/water-stress-ingest/internal/observability"
)

// fillValue is the provider's sentinel for a missing day.
const fillValue = -999.0

// lookbackDays is the date range requested per query.
const lookbackDays = 7

// Client implements the ingest soil-moisture source against NASA POWER.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NASA POWER client with the given per-call timeout.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://power.larc.nasa.gov/api/temporal/daily/point",
		breaker:    httpx.NewBreaker("nasapower"),
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchRootZoneMoisture queries the 7-day GWETPROF window ending at the
// reference time, skips fill values, and converts the most recent valid
// fraction to a clamped percentage. A window with no valid observation is a
// source error; the caller falls back to the precipitation estimate.
func (c *Client) FetchRootZoneMoisture(ctx context.Context, lat, lon float64, at time.Time) (float64, error) {
	start := time.Now()
	defer func() {
		c.metrics.ProviderDuration.WithLabelValues("soil").Observe(time.Since(start).Seconds())
	}()

	params := url.Values{
		"parameters": {"GWETPROF"},
		"community":  {"AG"},
		"latitude":   {fmt.Sprintf("%.4f", lat)},
		"longitude":  {fmt.Sprintf("%.4f", lon)},
		"start":      {at.AddDate(0, 0, -lookbackDays).Format("20060102")},
		"end":        {at.Format("20060102")},
		"format":     {"JSON"},
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, domain.NewSourceError("soil", fmt.Errorf("create request: %w", err))
	}

	resp, err := httpx.Do(ctx, c.httpClient, c.breaker, req)
	if err != nil {
		return 0, domain.NewSourceError("soil", err)
	}
	defer resp.Body.Close()

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, domain.NewSourceError("soil", fmt.Errorf("decode response: %w", err))
	}

	if msgs := payload.Header.Messages; len(msgs) > 0 {
		c.logger.Warn("soil moisture provider reported messages", "messages", msgs)
	}

	// Daily values are keyed by yyyymmdd, so the lexicographically largest
	// key is the most recent day.
	var latestDate string
	var latestFraction float64
	for date, fraction := range payload.Properties.Parameter.GWETPROF {
		if fraction == fillValue {
			continue
		}
		if date > latestDate {
			latestDate = date
			latestFraction = fraction
		}
	}
	if latestDate == "" {
		return 0, domain.NewSourceError("soil", fmt.Errorf("no valid observation in %d-day window", lookbackDays))
	}

	return domain.SoilMoistureFromFraction(latestFraction), nil
}

// NASA POWER API response types.

type response struct {
	Header struct {
		Messages []string `json:"messages"`
	} `json:"header"`
	Properties struct {
		Parameter struct {
			GWETPROF map[string]float64 `json:"GWETPROF"`
		} `json:"parameter"`
	} `json:"properties"`
}
