package planner

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	response string
	err      error
	prompts  []string
}

func (m *stubModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func TestLLMGeneratorParsesResponse(t *testing.T) {
	model := &stubModel{response: `Here is your plan:
[
  {"step_number": 1, "title": "Pack bags", "description": "Pack clothes for three days.", "estimated_duration": "1 hour", "requires_research": false},
  {"step_number": 2, "title": "Book hotel", "description": "Find a hotel near the fort.", "estimated_duration": "30 minutes", "requires_research": true, "research_topics": ["hotels in jaipur"]}
]
Enjoy the trip!`}

	steps := NewLLMGenerator(model).GenerateSteps(context.Background(), "plan a trip")
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	if steps[0].Title != "Pack bags" {
		t.Errorf("step 1 title = %q", steps[0].Title)
	}
	if !steps[1].RequiresResearch || len(steps[1].ResearchTopics) != 1 {
		t.Errorf("step 2 research fields not parsed: %+v", steps[1])
	}
}

func TestLLMGeneratorPromptContainsGoal(t *testing.T) {
	model := &stubModel{response: `[{"step_number": 1, "title": "x", "description": "y", "estimated_duration": "1 hour", "requires_research": false}]`}

	NewLLMGenerator(model).GenerateSteps(context.Background(), "learn woodworking")

	found := false
	for _, p := range model.prompts {
		if strings.Contains(p, "learn woodworking") {
			found = true
		}
	}
	if !found {
		t.Errorf("goal text missing from prompts: %v", model.prompts)
	}
}

func TestLLMGeneratorFallsBack(t *testing.T) {
	cases := []struct {
		name  string
		model *stubModel
	}{
		{"model error", &stubModel{err: fmt.Errorf("connection refused")}},
		{"no json array", &stubModel{response: "I cannot help with that."}},
		{"malformed json", &stubModel{response: `[{"step_number": "one"}]`}},
		{"empty array", &stubModel{response: "[]"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			steps := NewLLMGenerator(tc.model).GenerateSteps(context.Background(), "organize a garage sale")
			if len(steps) != 1 {
				t.Fatalf("got %d fallback steps, want 1", len(steps))
			}
			s := steps[0]
			if !strings.Contains(s.Description, "organize a garage sale") {
				t.Errorf("fallback description missing goal: %q", s.Description)
			}
			if !s.RequiresResearch || len(s.ResearchTopics) != 1 {
				t.Errorf("fallback step should require research on the goal: %+v", s)
			}
		})
	}
}

func TestParseStepsExtractsFencedArray(t *testing.T) {
	content := "```json\n[{\"step_number\": 1, \"title\": \"a\", \"description\": \"b\", \"estimated_duration\": \"5 minutes\", \"requires_research\": false}]\n```"
	steps, err := parseSteps(content)
	if err != nil {
		t.Fatalf("parseSteps: %v", err)
	}
	if len(steps) != 1 || steps[0].Title != "a" {
		t.Errorf("unexpected steps: %+v", steps)
	}
}

func TestTemplateGeneratorKeywordSelection(t *testing.T) {
	gen := NewTemplateGenerator()

	cases := []struct {
		goal       string
		steps      int
		firstTitle string
	}{
		{"Plan a 3-day trip to Jaipur", 3, "Day 1: Explore Historic Forts and Palaces"},
		{"Find the best vegetarian food in Hyderabad", 3, "Day 1 Morning: Traditional South Indian Breakfast"},
		{"Create a study schedule for learning Python", 5, "Morning Theory Session (30 minutes)"},
		{"Weekend getaway to Vizag", 4, "Saturday Morning: Beach Activities at RK Beach"},
		{"Weekend getaway to Visakhapatnam", 4, "Saturday Morning: Beach Activities at RK Beach"},
		{"Renovate the kitchen", 3, "Research and Planning"},
	}

	for _, tc := range cases {
		steps := gen.GenerateSteps(context.Background(), tc.goal)
		if len(steps) != tc.steps {
			t.Errorf("%q: got %d steps, want %d", tc.goal, len(steps), tc.steps)
			continue
		}
		if steps[0].Title != tc.firstTitle {
			t.Errorf("%q: first title = %q, want %q", tc.goal, steps[0].Title, tc.firstTitle)
		}
	}
}

func TestTemplateGeneratorGenericEmbedsGoal(t *testing.T) {
	steps := NewTemplateGenerator().GenerateSteps(context.Background(), "declutter the attic")

	if !strings.Contains(steps[0].Description, "declutter the attic") {
		t.Errorf("research step should mention the goal: %q", steps[0].Description)
	}
	wantTopics := []string{"declutter the attic implementation", "how to declutter the attic"}
	if !reflect.DeepEqual(steps[1].ResearchTopics, wantTopics) {
		t.Errorf("implementation topics = %v, want %v", steps[1].ResearchTopics, wantTopics)
	}
	if steps[2].RequiresResearch {
		t.Error("review step should not require research")
	}
}

func TestTemplateGeneratorDeterministic(t *testing.T) {
	gen := NewTemplateGenerator()
	first := gen.GenerateSteps(context.Background(), "plan a trip to jaipur")
	for i := 0; i < 5; i++ {
		again := gen.GenerateSteps(context.Background(), "plan a trip to jaipur")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed from first run", i)
		}
	}
}
