// Package openweather fetches short-term weather history from the
// OpenWeather free-tier APIs: current conditions plus the 5-day/3-hour
// forecast, aggregated to a daily series.
package openweather

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

// Client implements the ingest weather source against the OpenWeather API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeather client with the given per-call timeout.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.openweathermap.org/data/2.5",
		breaker:    httpx.NewBreaker("openweather"),
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchDailyHistory returns the live daily series for a point: today from
// current conditions, the following days from the 3-hourly forecast
// aggregated to daily records, normalized (date-ordered, deduplicated).
// Failure of the current-conditions read fails the whole fetch; a failed
// forecast read degrades to a single-day series. The caller is responsible
// for backfilling to the full 30-day window.
func (c *Client) FetchDailyHistory(ctx context.Context, lat, lon float64) (domain.DailySeries, error) {
	if c.apiKey == "" {
		return nil, domain.NewSourceError("weather", fmt.Errorf("no API key configured"))
	}

	start := time.Now()
	defer func() {
		c.metrics.ProviderDuration.WithLabelValues("weather").Observe(time.Since(start).Seconds())
	}()

	current, err := c.fetchCurrent(ctx, lat, lon)
	if err != nil {
		return nil, domain.NewSourceError("weather", err)
	}
	series := domain.DailySeries{current}

	forecast, err := c.fetchForecast(ctx, lat, lon)
	if err != nil {
		c.logger.Warn("forecast fetch failed, continuing with current conditions only",
			"lat", lat, "lon", lon, "error", err)
	} else {
		series = append(series, forecast...)
	}

	return series.Normalize(), nil
}

func (c *Client) fetchCurrent(ctx context.Context, lat, lon float64) (domain.WeatherRecord, error) {
	resp, err := c.get(ctx, "/weather", lat, lon)
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("current conditions: %w", err)
	}
	defer resp.Body.Close()

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("decode current conditions: %w", err)
	}

	return domain.WeatherRecord{
		Date:          time.Unix(payload.Dt, 0).UTC(),
		Precipitation: payload.Rain.OneH + payload.Snow.OneH,
		TempMax:       payload.Main.TempMax,
		TempMin:       payload.Main.TempMin,
		Humidity:      payload.Main.Humidity,
	}, nil
}

// fetchForecast aggregates the 3-hourly forecast entries into daily records:
// summed precipitation, max/min temperature, mean humidity.
func (c *Client) fetchForecast(ctx context.Context, lat, lon float64) (domain.DailySeries, error) {
	resp, err := c.get(ctx, "/forecast", lat, lon)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	defer resp.Body.Close()

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	type bucket struct {
		precip      float64
		tempMax     float64
		tempMin     float64
		humiditySum float64
		samples     int
	}
	days := make(map[string]*bucket)

	for _, item := range payload.List {
		ts := time.Unix(item.Dt, 0).UTC()
		key := ts.Format("2006-01-02")
		b, ok := days[key]
		if !ok {
			b = &bucket{tempMax: item.Main.Temp, tempMin: item.Main.Temp}
			days[key] = b
		}
		b.precip += item.Rain.ThreeH + item.Snow.ThreeH
		if item.Main.Temp > b.tempMax {
			b.tempMax = item.Main.Temp
		}
		if item.Main.Temp < b.tempMin {
			b.tempMin = item.Main.Temp
		}
		b.humiditySum += item.Main.Humidity
		b.samples++
	}

	series := make(domain.DailySeries, 0, len(days))
	for key, b := range days {
		date, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		series = append(series, domain.WeatherRecord{
			Date:          date,
			Precipitation: b.precip,
			TempMax:       b.tempMax,
			TempMin:       b.tempMin,
			Humidity:      b.humiditySum / float64(b.samples),
		})
	}
	return series, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lon float64) (*http.Response, error) {
	params := url.Values{
		"lat":   {fmt.Sprintf("%.4f", lat)},
		"lon":   {fmt.Sprintf("%.4f", lon)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return httpx.Do(ctx, c.httpClient, c.breaker, req)
}

// OpenWeather API response types (free tier 2.5).

type currentResponse struct {
	Dt   int64 `json:"dt"`
	Main struct {
		TempMax  float64 `json:"temp_max"`
		TempMin  float64 `json:"temp_min"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Rain struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Snow struct {
		OneH float64 `json:"1h"`
	} `json:"snow"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Rain struct {
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Snow struct {
			ThreeH float64 `json:"3h"`
		} `json:"snow"`
	} `json:"list"`
}
