// Package pipeline enriches draft plan steps with web research and weather
// context. Enrichment is strictly additive: a step's draft fields are never
// modified, and a step that requires no research passes through unchanged.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/planweave/planweave/internal/plan"
	"github.com/planweave/planweave/internal/search"
	"github.com/planweave/planweave/internal/weather"
)

const (
	defaultPerTopicResults = 3
	defaultForecastDays    = 5
	defaultConcurrency     = 4
)

// outdoorKeywords decide whether a step is location/outdoor relevant enough
// to justify a weather lookup.
var outdoorKeywords = []string{"trip", "travel", "visit", "weather", "outdoor", "beach", "hiking"}

// Searcher is the search provider contract: it never fails, it only returns
// results whose source field indicates provenance.
type Searcher interface {
	Search(ctx context.Context, query string, numResults int) []search.Result
}

// Forecaster is the weather provider contract, same failure policy.
type Forecaster interface {
	Forecast(ctx context.Context, location string, days int) weather.Forecast
}

// Locator resolves free text to a primary location.
type Locator interface {
	PrimaryLocation(text string) (string, bool)
}

// Enricher orchestrates the per-step enrichment: web research per topic,
// then location detection and a weather forecast for outdoor-relevant steps.
type Enricher struct {
	searcher    Searcher
	forecaster  Forecaster
	locator     Locator
	perTopic    int
	days        int
	concurrency int
}

// NewEnricher creates an Enricher wired to both providers and the location
// extractor. perTopic controls how many search results are kept per research
// topic (default 3 if <= 0).
func NewEnricher(searcher Searcher, forecaster Forecaster, locator Locator, perTopic int) *Enricher {
	if perTopic <= 0 {
		perTopic = defaultPerTopicResults
	}
	return &Enricher{
		searcher:    searcher,
		forecaster:  forecaster,
		locator:     locator,
		perTopic:    perTopic,
		days:        defaultForecastDays,
		concurrency: defaultConcurrency,
	}
}

// Enrich returns the enriched counterpart of each draft step, same length
// and order as the input. Steps are independent, so they are processed
// concurrently (bounded); within one step, research results stay
// concatenated in topic order. Enrichment never fails: provider degradation
// surfaces only as source tags on the attached data.
func (e *Enricher) Enrich(ctx context.Context, steps []plan.Step) []plan.Step {
	if len(steps) == 0 {
		return nil
	}

	start := time.Now()
	enriched := make([]plan.Step, len(steps))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, step := range steps {
		g.Go(func() error {
			enriched[i] = e.enrichStep(gCtx, step)
			return nil
		})
	}
	// Workers write disjoint slots and never return errors.
	g.Wait()

	slog.Debug("enrichment complete",
		"steps", len(steps),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return enriched
}

func (e *Enricher) enrichStep(ctx context.Context, step plan.Step) plan.Step {
	if !step.RequiresResearch {
		return step
	}

	for _, topic := range step.ResearchTopics {
		results := e.searcher.Search(ctx, topic, e.perTopic)
		if len(results) > e.perTopic {
			results = results[:e.perTopic]
		}
		step.WebResearch = append(step.WebResearch, results...)
	}

	if !outdoorRelevant(step.Description) {
		return step
	}

	blob := step.Description + " " + strings.Join(step.ResearchTopics, " ")
	location, ok := e.locator.PrimaryLocation(blob)
	if !ok {
		return step
	}

	forecast := e.forecaster.Forecast(ctx, location, e.days)
	step.Weather = &forecast
	step.DetectedLocation = location
	return step
}

func outdoorRelevant(description string) bool {
	desc := strings.ToLower(description)
	for _, kw := range outdoorKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
