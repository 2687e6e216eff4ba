// Package planner turns a natural-language goal into draft plan steps.
// Two generators exist: an LLM-backed one and a keyword-template fallback,
// selected once at startup depending on whether an API token is configured.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/planweave/planweave/internal/plan"
)

const systemPrompt = "You are a helpful task planning assistant. Always respond with valid JSON."

// Generator breaks a goal into draft steps. Implementations never fail: on
// any error they fall back to a minimal single-step plan, so plan creation
// always proceeds.
type Generator interface {
	GenerateSteps(ctx context.Context, goal string) []plan.Step
}

// LLMGenerator asks a chat model to decompose the goal into structured steps.
type LLMGenerator struct {
	model llms.Model
}

// NewLLMGenerator creates an LLMGenerator around the given model.
func NewLLMGenerator(model llms.Model) *LLMGenerator {
	return &LLMGenerator{model: model}
}

// GenerateSteps prompts the model and parses its JSON array response.
// Malformed or empty responses degrade to the fallback step list.
func (g *LLMGenerator) GenerateSteps(ctx context.Context, goal string) []plan.Step {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildPrompt(goal)),
	}

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithMaxTokens(1500),
		llms.WithTemperature(0.7),
	)
	if err != nil {
		slog.Warn("step generation failed, using fallback plan", "error", err)
		return fallbackSteps(goal)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("step generation returned no choices, using fallback plan")
		return fallbackSteps(goal)
	}

	steps, err := parseSteps(resp.Choices[0].Content)
	if err != nil {
		slog.Warn("could not parse generated steps, using fallback plan", "error", err)
		return fallbackSteps(goal)
	}
	return steps
}

func buildPrompt(goal string) string {
	return fmt.Sprintf(`You are an expert task planning assistant. Given a goal, break it down into clear, actionable steps.

Goal: %s

Please provide a structured plan with the following format:
- Each step should be specific and actionable
- Include timing estimates where relevant
- Consider dependencies between steps
- Include any research or information gathering needs

Return your response as a JSON array of steps, where each step has:
- "step_number": integer
- "title": brief title of the step
- "description": detailed description
- "estimated_duration": time estimate
- "requires_research": boolean if external info is needed
- "research_topics": array of topics to research (if applicable)`, goal)
}

// parseSteps extracts the JSON array from a model response that may wrap it
// in prose or code fences.
func parseSteps(content string) ([]plan.Step, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var steps []plan.Step
	if err := json.Unmarshal([]byte(content[start:end+1]), &steps); err != nil {
		return nil, fmt.Errorf("unmarshalling steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("response contained an empty step list")
	}
	return steps, nil
}

// fallbackSteps is the minimal draft produced when generation fails.
func fallbackSteps(goal string) []plan.Step {
	return []plan.Step{{
		StepNumber:        1,
		Title:             "Break down the goal",
		Description:       fmt.Sprintf("Research and plan for: %s", goal),
		EstimatedDuration: "30 minutes",
		RequiresResearch:  true,
		ResearchTopics:    []string{goal},
	}}
}
