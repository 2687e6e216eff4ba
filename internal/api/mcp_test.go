package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/planweave/planweave/internal/cache"
	"github.com/planweave/planweave/internal/location"
	"github.com/planweave/planweave/internal/pipeline"
	"github.com/planweave/planweave/internal/plan"
	"github.com/planweave/planweave/internal/planner"
	"github.com/planweave/planweave/internal/search"
	"github.com/planweave/planweave/internal/storage"
	"github.com/planweave/planweave/internal/weather"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	c := cache.New(true, time.Minute)
	searcher := search.NewClient("", "", c)
	forecaster := weather.NewClient("", c)
	locator := location.NewExtractor(location.NoopRecognizer{})

	return MCPDeps{
		Store:      store,
		Planner:    planner.NewTemplateGenerator(),
		Enricher:   pipeline.NewEnricher(searcher, forecaster, locator, 3),
		Forecaster: forecaster,
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tools ---

func TestMCPCreatePlan(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	result, err := mcpCreatePlan(deps)(context.Background(), makeCallToolRequest("create_plan", map[string]interface{}{
		"goal": "Plan a 3-day trip to Jaipur",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var created struct {
		ID         int64  `json:"id"`
		Goal       string `json:"goal"`
		TotalSteps int    `json:"total_steps"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &created); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if created.ID <= 0 {
		t.Errorf("id = %d, want positive", created.ID)
	}
	if created.TotalSteps != 3 {
		t.Errorf("total_steps = %d, want 3", created.TotalSteps)
	}

	record, err := store.GetPlan(created.ID)
	if err != nil {
		t.Fatalf("plan not persisted: %v", err)
	}
	var doc plan.Plan
	if err := json.Unmarshal([]byte(record.PlanJSON), &doc); err != nil {
		t.Fatalf("stored plan is not JSON: %v", err)
	}
	if doc.TotalSteps != 3 {
		t.Errorf("stored total_steps = %d", doc.TotalSteps)
	}
}

func TestMCPCreatePlanRequiresGoal(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	for _, args := range []map[string]interface{}{
		{},
		{"goal": "   "},
	} {
		result, err := mcpCreatePlan(deps)(context.Background(), makeCallToolRequest("create_plan", args))
		if err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if !result.IsError {
			t.Errorf("expected tool error for args %v", args)
		}
	}
}

func TestMCPGetPlan(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	id, err := store.SavePlan("test goal", `{"goal":"test goal","total_steps":1}`, 1)
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	result, err := mcpGetPlan(deps)(context.Background(), makeCallToolRequest("get_plan", map[string]interface{}{
		"id": float64(id),
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}
	if !strings.Contains(toolText(t, result), `"goal":"test goal"`) {
		t.Errorf("unexpected plan payload: %s", toolText(t, result))
	}
}

func TestMCPGetPlanNotFound(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, err := mcpGetPlan(deps)(context.Background(), makeCallToolRequest("get_plan", map[string]interface{}{
		"id": float64(404),
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing plan")
	}
}

func TestMCPSearchPlans(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	for _, goal := range []string{"trip to jaipur", "study python", "trip to goa"} {
		if _, err := store.SavePlan(goal, "{}", 2); err != nil {
			t.Fatalf("SavePlan: %v", err)
		}
	}

	result, err := mcpSearchPlans(deps)(context.Background(), makeCallToolRequest("search_plans", map[string]interface{}{
		"query": "trip",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var matches []struct {
		ID   int64  `json:"id"`
		Goal string `json:"goal"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &matches); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}
}

func TestMCPSearchPlansEmpty(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, err := mcpSearchPlans(deps)(context.Background(), makeCallToolRequest("search_plans", map[string]interface{}{
		"query": "nothing here",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := toolText(t, result); got != "[]" {
		t.Errorf("empty search result = %q, want []", got)
	}
}

func TestMCPWeatherAdvice(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, err := mcpWeatherAdvice(deps)(context.Background(), makeCallToolRequest("plan_weather_advice", map[string]interface{}{
		"location": "jaipur",
		"days":     float64(3),
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", toolText(t, result))
	}

	var advice struct {
		Location string `json:"location"`
		Source   string `json:"source"`
		Days     []struct {
			Date   string `json:"date"`
			Advice string `json:"advice"`
		} `json:"days"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &advice); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if advice.Source != "mock_data" {
		t.Errorf("source = %q, want mock_data", advice.Source)
	}
	if len(advice.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(advice.Days))
	}
	for _, d := range advice.Days {
		if d.Advice == "" {
			t.Errorf("day %s has empty advice", d.Date)
		}
	}
}

// --- resources ---

func TestMCPResourceRecentPlans(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	if _, err := store.SavePlan("recent goal", "{}", 1); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	contents, err := mcpResourceRecentPlans(deps)(context.Background(), makeReadResourceRequest("plans://recent"))
	if err != nil {
		t.Fatalf("resource error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}

	var plans []struct {
		Goal string `json:"goal"`
	}
	if err := json.Unmarshal([]byte(text.Text), &plans); err != nil {
		t.Fatalf("resource is not JSON: %v", err)
	}
	if len(plans) != 1 || plans[0].Goal != "recent goal" {
		t.Errorf("unexpected plans: %+v", plans)
	}
}
