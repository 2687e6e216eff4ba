// Package export renders stored plans as downloadable JSON, CSV, or Markdown.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planweave/planweave/internal/plan"
)

// Format identifies an export output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format string from a URL path or CLI flag.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json, csv, or markdown)", s)
	}
}

// Record pairs a stored plan's row metadata with its parsed document.
type Record struct {
	ID        int64
	Goal      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Plan      plan.Plan
}

// Exporter renders plan records. The clock and id source are injectable so
// tests can pin them.
type Exporter struct {
	now   func() time.Time
	newID func() string
}

// New creates an Exporter using the real clock and random export ids.
func New() *Exporter {
	return &Exporter{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Render produces the export document for the given format.
func (e *Exporter) Render(format Format, records []Record) (string, error) {
	switch format {
	case FormatJSON:
		return e.renderJSON(records)
	case FormatCSV:
		return e.renderCSV(records)
	case FormatMarkdown:
		return e.renderMarkdown(records), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

type exportInfo struct {
	ExportID   string `json:"export_id"`
	Timestamp  string `json:"timestamp"`
	Format     string `json:"format"`
	TotalPlans int    `json:"total_plans"`
	ExportedBy string `json:"exported_by"`
}

type jsonPlanEntry struct {
	ID        int64     `json:"id"`
	Goal      string    `json:"goal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PlanData  plan.Plan `json:"plan_data"`
}

type jsonDocument struct {
	ExportInfo exportInfo      `json:"export_info"`
	Plans      []jsonPlanEntry `json:"plans"`
}

func (e *Exporter) renderJSON(records []Record) (string, error) {
	doc := jsonDocument{
		ExportInfo: exportInfo{
			ExportID:   e.newID(),
			Timestamp:  e.now().UTC().Format(time.RFC3339),
			Format:     string(FormatJSON),
			TotalPlans: len(records),
			ExportedBy: "planweave",
		},
		Plans: make([]jsonPlanEntry, 0, len(records)),
	}
	for _, r := range records {
		doc.Plans = append(doc.Plans, jsonPlanEntry{
			ID:        r.ID,
			Goal:      r.Goal,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			PlanData:  r.Plan,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshalling export document: %w", err)
	}
	return string(out), nil
}

var csvHeaders = []string{
	"id", "goal", "created_at", "updated_at", "total_steps",
	"estimated_duration", "has_weather_info", "has_web_research",
	"research_topics", "steps_summary",
}

func (e *Exporter) renderCSV(records []Record) (string, error) {
	if len(records) == 0 {
		return "No plans to export", nil
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeaders); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range records {
		summaries := make([]string, 0, len(r.Plan.Steps))
		for _, s := range r.Plan.Steps {
			summaries = append(summaries, fmt.Sprintf("Step %d: %s", s.StepNumber, s.Title))
		}

		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.Goal,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
			fmt.Sprintf("%d", r.Plan.TotalSteps),
			r.Plan.EstimatedTotalDuration,
			fmt.Sprintf("%t", r.Plan.Metadata.HasWeatherInfo),
			fmt.Sprintf("%t", r.Plan.Metadata.HasWebResearch),
			strings.Join(r.Plan.Metadata.ResearchTopics, ", "),
			strings.Join(summaries, "; "),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing CSV row for plan %d: %w", r.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.String(), nil
}

func (e *Exporter) renderMarkdown(records []Record) string {
	if len(records) == 0 {
		return "# No plans to export\n"
	}

	var b strings.Builder
	b.WriteString("# planweave - Exported Plans\n")
	fmt.Fprintf(&b, "**Export Date:** %s\n", e.now().UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Total Plans:** %d\n", len(records))
	b.WriteString("---\n")

	for i, r := range records {
		fmt.Fprintf(&b, "## Plan %d: %s\n", i+1, r.Goal)

		b.WriteString("### Plan Information\n")
		fmt.Fprintf(&b, "- **ID:** %d\n", r.ID)
		fmt.Fprintf(&b, "- **Created:** %s\n", r.CreatedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "- **Total Steps:** %d\n", r.Plan.TotalSteps)
		fmt.Fprintf(&b, "- **Estimated Duration:** %s\n", r.Plan.EstimatedTotalDuration)
		fmt.Fprintf(&b, "- **Has Weather Info:** %s\n", yesNo(r.Plan.Metadata.HasWeatherInfo))
		fmt.Fprintf(&b, "- **Has Web Research:** %s\n", yesNo(r.Plan.Metadata.HasWebResearch))
		if len(r.Plan.Metadata.ResearchTopics) > 0 {
			fmt.Fprintf(&b, "- **Research Topics:** %s\n", strings.Join(r.Plan.Metadata.ResearchTopics, ", "))
		}
		b.WriteString("\n")

		if len(r.Plan.Steps) > 0 {
			b.WriteString("### Plan Steps\n")
			for _, s := range r.Plan.Steps {
				fmt.Fprintf(&b, "#### Step %d: %s\n", s.StepNumber, s.Title)
				fmt.Fprintf(&b, "**Description:** %s\n", s.Description)
				fmt.Fprintf(&b, "**Estimated Duration:** %s\n", s.EstimatedDuration)

				if len(s.WebResearch) > 0 {
					b.WriteString("**Research Results:**\n")
					research := s.WebResearch
					if len(research) > 3 {
						research = research[:3]
					}
					for _, res := range research {
						fmt.Fprintf(&b, "- %s: %s\n", res.Title, res.Snippet)
					}
				}

				if s.Weather != nil {
					fmt.Fprintf(&b, "**Weather for %s:**\n", s.Weather.Location)
					daily := s.Weather.Daily
					if len(daily) > 3 {
						daily = daily[:3]
					}
					for _, d := range daily {
						fmt.Fprintf(&b, "- %s: %s, %.0f-%.0f°C\n", d.Date, d.Description, d.MinTemp, d.MaxTemp)
					}
				}

				b.WriteString("\n")
			}
		}

		b.WriteString("---\n")
	}

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// Filename generates a download filename for an export.
func (e *Exporter) Filename(format Format, planCount int) string {
	ts := e.now().UTC().Format("20060102_150405")
	base := fmt.Sprintf("plans_%d_%s", planCount, ts)
	if planCount == 1 {
		base = "plan_" + ts
	}

	switch format {
	case FormatJSON:
		return base + ".json"
	case FormatCSV:
		return base + ".csv"
	case FormatMarkdown:
		return base + ".md"
	default:
		return base + ".txt"
	}
}

// ContentType returns the MIME type for a format.
func ContentType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}
