package weather

import (
	"sort"
	"time"
)

// sample mirrors one 3-hour entry from the forecast endpoint.
type sample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// summarizeDaily buckets fixed-interval samples by calendar date and reduces
// each bucket to min/max/average temperature, average humidity and wind, and
// the most frequent description (ties broken by first occurrence in the
// API's original sample order).
func summarizeDaily(samples []sample) []DailyForecast {
	type bucket struct {
		temps        []float64
		humidity     []float64
		windSpeeds   []float64
		descriptions []string
	}

	buckets := make(map[string]*bucket)
	for _, s := range samples {
		date := time.Unix(s.Dt, 0).UTC().Format("2006-01-02")
		b, ok := buckets[date]
		if !ok {
			b = &bucket{}
			buckets[date] = b
		}
		b.temps = append(b.temps, s.Main.Temp)
		b.humidity = append(b.humidity, s.Main.Humidity)
		b.windSpeeds = append(b.windSpeeds, s.Wind.Speed)
		if len(s.Weather) > 0 {
			b.descriptions = append(b.descriptions, s.Weather[0].Description)
		}
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	daily := make([]DailyForecast, 0, len(dates))
	for _, date := range dates {
		b := buckets[date]
		daily = append(daily, DailyForecast{
			Date:         date,
			MaxTemp:      maxOf(b.temps),
			MinTemp:      minOf(b.temps),
			AvgTemp:      avgOf(b.temps),
			AvgHumidity:  avgOf(b.humidity),
			AvgWindSpeed: avgOf(b.windSpeeds),
			Description:  modeDescription(b.descriptions),
		})
	}
	return daily
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func avgOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// modeDescription returns the most frequent description; on a tie the one
// that appeared first wins.
func modeDescription(descriptions []string) string {
	if len(descriptions) == 0 {
		return ""
	}

	counts := make(map[string]int, len(descriptions))
	for _, d := range descriptions {
		counts[d]++
	}

	best := descriptions[0]
	for _, d := range descriptions {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}
