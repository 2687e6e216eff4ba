package weather

import (
	"strings"
	"time"
	"unicode"
)

// Deterministic synthetic weather: a per-location base temperature, a fixed
// repeating variation pattern, and a fixed repeating description cycle, so
// tests can assert exact values.

var mockConditions = map[string]struct {
	temp     float64
	desc     string
	humidity float64
}{
	"jaipur":        {28, "clear sky", 45},
	"hyderabad":     {26, "partly cloudy", 60},
	"vizag":         {24, "overcast clouds", 75},
	"visakhapatnam": {24, "overcast clouds", 75},
}

var (
	mockTempVariation = []float64{-2, 1, -1, 2, 0}
	mockDescriptions  = []string{"clear sky", "partly cloudy", "overcast clouds", "light rain", "clear sky"}
)

func (c *Client) mockCurrent(location string) Current {
	cond, ok := mockConditions[strings.ToLower(location)]
	if !ok {
		cond = struct {
			temp     float64
			desc     string
			humidity float64
		}{25, "partly cloudy", 55}
	}

	return Current{
		Location:    titleCase(location),
		Country:     "IN",
		Temperature: cond.temp,
		FeelsLike:   cond.temp + 2,
		Humidity:    cond.humidity,
		Description: cond.desc,
		Main:        titleCase(strings.Fields(cond.desc)[0]),
		WindSpeed:   3.5,
		Timestamp:   c.now().Format(time.RFC3339),
		Source:      SourceMock,
	}
}

func (c *Client) mockForecast(location string, days int) Forecast {
	base := c.mockCurrent(location).Temperature

	daily := make([]DailyForecast, 0, days)
	today := c.now()
	for i := 0; i < days; i++ {
		variation := mockTempVariation[i%len(mockTempVariation)]
		daily = append(daily, DailyForecast{
			Date:         today.AddDate(0, 0, i).Format("2006-01-02"),
			MaxTemp:      base + variation + 3,
			MinTemp:      base + variation - 2,
			AvgTemp:      base + variation,
			AvgHumidity:  55 + float64(i*5),
			AvgWindSpeed: 3.5,
			Description:  mockDescriptions[i%len(mockDescriptions)],
		})
	}

	return Forecast{
		Location:     titleCase(location),
		Country:      "IN",
		ForecastDays: days,
		Daily:        daily,
		Timestamp:    c.now().Format(time.RFC3339),
		Source:       SourceMock,
	}
}

// titleCase upper-cases the first letter of each space-separated word,
// matching how location names are rendered in mock payloads.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
