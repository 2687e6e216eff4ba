package weather

import "strings"

// Advice thresholds in degrees Celsius.
const (
	hotThreshold  = 30
	coolThreshold = 15
)

// AdviseDaily generates planning advice for one forecast day.
func AdviseDaily(d DailyForecast) string {
	return advise(d.AvgTemp, d.Description)
}

// AdviseCurrent generates planning advice for a current-conditions snapshot.
func AdviseCurrent(cur Current) string {
	return advise(cur.Temperature, cur.Description)
}

func advise(temp float64, description string) string {
	var advice []string

	if temp > hotThreshold {
		advice = append(advice, "Hot weather expected - plan indoor activities during peak hours")
	} else if temp < coolThreshold {
		advice = append(advice, "Cool weather - carry warm clothing")
	}

	desc := strings.ToLower(description)
	if strings.Contains(desc, "rain") {
		advice = append(advice, "Rain expected - carry umbrella and plan indoor alternatives")
	} else if strings.Contains(desc, "clear") {
		advice = append(advice, "Clear skies - perfect for outdoor activities")
	}

	if len(advice) == 0 {
		return "Pleasant weather conditions expected"
	}
	return strings.Join(advice, "; ")
}
