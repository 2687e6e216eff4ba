// Package weather wraps the OpenWeatherMap API behind a client that never
// fails: transport errors, malformed responses, and missing credentials all
// degrade to deterministic mock data tagged with its provenance.
package weather

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/planweave/planweave/internal/cache"
)

const (
	defaultBaseURL = "http://api.openweathermap.org/data/2.5"
	requestTimeout = 10 * time.Second
	currentTTL     = 30 * time.Minute
	forecastTTL    = time.Hour
	maxForecastDay = 5

	// SourceLive tags data returned by the live weather API.
	SourceLive = "openweathermap"
	// SourceMock tags synthetic data produced when the API is unavailable
	// or uncredentialed.
	SourceMock = "mock_data"
)

// Current is a current-conditions snapshot for a location.
type Current struct {
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
	Main        string  `json:"main"`
	WindSpeed   float64 `json:"wind_speed"`
	Timestamp   string  `json:"timestamp"`
	Source      string  `json:"source"`
}

// DailyForecast summarizes one calendar day of forecast samples.
type DailyForecast struct {
	Date         string  `json:"date"`
	MaxTemp      float64 `json:"max_temp"`
	MinTemp      float64 `json:"min_temp"`
	AvgTemp      float64 `json:"avg_temp"`
	AvgHumidity  float64 `json:"avg_humidity"`
	AvgWindSpeed float64 `json:"avg_wind_speed"`
	Description  string  `json:"description"`
}

// Forecast is a multi-day forecast for a location.
type Forecast struct {
	Location     string          `json:"location"`
	Country      string          `json:"country"`
	ForecastDays int             `json:"forecast_days"`
	Daily        []DailyForecast `json:"daily_forecasts"`
	Timestamp    string          `json:"timestamp"`
	Source       string          `json:"source"`
}

// Client fetches weather data. With an empty API key it serves mock data for
// its whole lifetime.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	now        func() time.Time
}

// NewClient creates a weather client. apiKey may be empty, in which case
// every lookup takes the synthetic path.
func NewClient(apiKey string, c *cache.Cache) *Client {
	if apiKey == "" {
		slog.Warn("weather API key not configured, using mock data")
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      c,
		now:        time.Now,
	}
}

// Current returns current conditions for location. It never returns an
// error; failures fall back to mock data, and both outcomes are cached.
func (c *Client) Current(ctx context.Context, location string) Current {
	key := cache.Key("weather_current", location)
	cur, _ := cache.Do(c.cache, key, currentTTL, func() (Current, error) {
		return c.current(ctx, location), nil
	})
	return cur
}

func (c *Client) current(ctx context.Context, location string) Current {
	if c.apiKey == "" {
		return c.mockCurrent(location)
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if !c.getJSON(ctx, "/weather", params, &payload) {
		return c.mockCurrent(location)
	}
	if len(payload.Weather) == 0 {
		slog.Warn("weather response missing conditions", "location", location)
		return c.mockCurrent(location)
	}

	return Current{
		Location:    payload.Name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		Description: payload.Weather[0].Description,
		Main:        payload.Weather[0].Main,
		WindSpeed:   payload.Wind.Speed,
		Timestamp:   c.now().Format(time.RFC3339),
		Source:      SourceLive,
	}
}

// Forecast returns a forecast for up to days calendar days (capped at 5).
// It never returns an error; failures fall back to mock data, and both
// outcomes are cached.
func (c *Client) Forecast(ctx context.Context, location string, days int) Forecast {
	if days <= 0 {
		days = maxForecastDay
	}
	if days > maxForecastDay {
		days = maxForecastDay
	}

	key := cache.Key("weather_forecast", location, days)
	fc, _ := cache.Do(c.cache, key, forecastTTL, func() (Forecast, error) {
		return c.forecast(ctx, location, days), nil
	})
	return fc
}

func (c *Client) forecast(ctx context.Context, location string, days int) Forecast {
	if c.apiKey == "" {
		return c.mockForecast(location, days)
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	// The API returns 3-hour samples, 8 per day, at most 40.
	params.Set("cnt", strconv.Itoa(min(days*8, 40)))

	var payload struct {
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
		List []sample `json:"list"`
	}
	if !c.getJSON(ctx, "/forecast", params, &payload) {
		return c.mockForecast(location, days)
	}
	if len(payload.List) == 0 {
		slog.Warn("forecast response contained no samples", "location", location)
		return c.mockForecast(location, days)
	}

	daily := summarizeDaily(payload.List)
	return Forecast{
		Location:     payload.City.Name,
		Country:      payload.City.Country,
		ForecastDays: len(daily),
		Daily:        daily,
		Timestamp:    c.now().Format(time.RFC3339),
		Source:       SourceLive,
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		slog.Warn("building weather request failed", "error", err)
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("weather API request failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("weather API returned non-OK status", "status", resp.StatusCode)
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Warn("decoding weather response failed", "error", err)
		return false
	}
	return true
}
