// Package plan defines the plan and step records shared across the planner,
// the enrichment pipeline, storage, and export.
package plan

import (
	"time"

	"github.com/planweave/planweave/internal/search"
	"github.com/planweave/planweave/internal/weather"
)

// Step is one actionable step of a plan. The first six fields form the draft
// produced by goal decomposition; the trailing optional fields are added by
// enrichment and are absent (omitted from JSON) on untouched steps.
type Step struct {
	StepNumber        int      `json:"step_number"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	EstimatedDuration string   `json:"estimated_duration"`
	RequiresResearch  bool     `json:"requires_research"`
	ResearchTopics    []string `json:"research_topics,omitempty"`

	WebResearch      []search.Result   `json:"web_research,omitempty"`
	Weather          *weather.Forecast `json:"weather_info,omitempty"`
	DetectedLocation string            `json:"detected_location,omitempty"`
}

// Metadata aggregates facts about a plan's steps.
type Metadata struct {
	HasWeatherInfo bool     `json:"has_weather_info"`
	HasWebResearch bool     `json:"has_web_research"`
	ResearchTopics []string `json:"research_topics"`
}

// Plan is a complete structured plan for a goal. The numeric identity is
// assigned by the storage layer; an assembled plan is always id-less.
type Plan struct {
	Goal                   string    `json:"goal"`
	CreatedAt              time.Time `json:"created_at"`
	TotalSteps             int       `json:"total_steps"`
	EstimatedTotalDuration string    `json:"estimated_total_duration"`
	Steps                  []Step    `json:"steps"`
	Metadata               Metadata  `json:"metadata"`
}
