package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

var firstNumber = regexp.MustCompile(`\d+`)

// Assemble wraps enriched steps into a final Plan with aggregate duration
// and metadata.
func Assemble(goal string, steps []Step) Plan {
	return Plan{
		Goal:                   goal,
		CreatedAt:              time.Now().UTC(),
		TotalSteps:             len(steps),
		EstimatedTotalDuration: totalDuration(steps),
		Steps:                  steps,
		Metadata: Metadata{
			HasWeatherInfo: anyStep(steps, func(s Step) bool { return s.Weather != nil }),
			HasWebResearch: anyStep(steps, func(s Step) bool { return len(s.WebResearch) > 0 }),
			ResearchTopics: allTopics(steps),
		},
	}
}

// totalDuration sums each step's free-text duration and renders the total in
// the largest applicable unit combination. Durations are informal text, so
// parsing is permissive: the first integer found is the magnitude, "day" and
// "hour" in the string select the unit, anything else counts as minutes.
// Steps without a parseable number contribute zero.
func totalDuration(steps []Step) string {
	totalMinutes := 0
	for _, s := range steps {
		totalMinutes += parseDurationMinutes(s.EstimatedDuration)
	}

	switch {
	case totalMinutes >= minutesPerDay:
		days := totalMinutes / minutesPerDay
		hours := (totalMinutes % minutesPerDay) / 60
		return fmt.Sprintf("%d days, %d hours", days, hours)
	case totalMinutes >= 60:
		hours := totalMinutes / 60
		minutes := totalMinutes % 60
		return fmt.Sprintf("%d hours, %d minutes", hours, minutes)
	default:
		return fmt.Sprintf("%d minutes", totalMinutes)
	}
}

func parseDurationMinutes(text string) int {
	m := firstNumber.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "day"):
		return n * minutesPerDay
	case strings.Contains(lower, "hour"):
		return n * 60
	default:
		return n
	}
}

func anyStep(steps []Step, pred func(Step) bool) bool {
	for _, s := range steps {
		if pred(s) {
			return true
		}
	}
	return false
}

// allTopics returns the deduplicated union of every step's research topics.
func allTopics(steps []Step) []string {
	seen := make(map[string]struct{})
	topics := []string{}
	for _, s := range steps {
		for _, t := range s.ResearchTopics {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			topics = append(topics, t)
		}
	}
	return topics
}
