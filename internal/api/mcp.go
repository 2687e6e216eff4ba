package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/planweave/planweave/internal/pipeline"
	"github.com/planweave/planweave/internal/plan"
	"github.com/planweave/planweave/internal/planner"
	"github.com/planweave/planweave/internal/storage"
	"github.com/planweave/planweave/internal/weather"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store      *storage.Store
	Planner    planner.Generator
	Enricher   *pipeline.Enricher
	Forecaster pipeline.Forecaster
}

// NewMCPServer creates an MCP server exposing planweave's planning tools.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"planweave",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("planweave — goal planning with web research and weather enrichment."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("create_plan",
			mcp.WithDescription("Break a goal into steps, enrich them with web research and weather forecasts, and store the result."),
			mcp.WithString("goal", mcp.Description("The goal to plan for"), mcp.Required()),
		),
		mcpCreatePlan(deps),
	)

	s.AddTool(
		mcp.NewTool("get_plan",
			mcp.WithDescription("Retrieve a stored plan by id, including all steps and enrichment data."),
			mcp.WithNumber("id", mcp.Description("Plan id"), mcp.Required()),
		),
		mcpGetPlan(deps),
	)

	s.AddTool(
		mcp.NewTool("search_plans",
			mcp.WithDescription("Search stored plans by goal text and return matching summaries."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearchPlans(deps),
	)

	s.AddTool(
		mcp.NewTool("plan_weather_advice",
			mcp.WithDescription("Get a multi-day weather forecast with planning advice for a location."),
			mcp.WithString("location", mcp.Description("City or place name"), mcp.Required()),
			mcp.WithNumber("days", mcp.Description("Forecast length in days, 1-5 (default 5)")),
		),
		mcpWeatherAdvice(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"plans://recent",
			"Recent Plans",
			mcp.WithResourceDescription("Last 10 stored plans (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecentPlans(deps),
	)

	return s
}

func mcpCreatePlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		goal, err := req.RequireString("goal")
		if err != nil {
			return mcpError("goal is required"), nil
		}
		goal = strings.TrimSpace(goal)
		if goal == "" {
			return mcpError("goal is required"), nil
		}

		steps := deps.Planner.GenerateSteps(ctx, goal)
		if len(steps) == 0 {
			return mcpError("failed to generate plan steps"), nil
		}
		enriched := deps.Enricher.Enrich(ctx, steps)
		assembled := plan.Assemble(goal, enriched)

		planJSON, err := json.Marshal(assembled)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode plan: %v", err)), nil
		}

		id, err := deps.Store.SavePlan(goal, string(planJSON), assembled.TotalSteps)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to save plan: %v", err)), nil
		}

		b, err := json.Marshal(map[string]any{
			"id":                       id,
			"goal":                     assembled.Goal,
			"total_steps":              assembled.TotalSteps,
			"estimated_total_duration": assembled.EstimatedTotalDuration,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetPlan(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetInt("id", 0)
		if id <= 0 {
			return mcpError("id must be a positive integer"), nil
		}

		record, err := deps.Store.GetPlan(int64(id))
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("plan %d not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get plan: %v", err)), nil
		}

		return mcpText(record.PlanJSON), nil
	}
}

func mcpSearchPlans(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		summaries, err := deps.Store.SearchPlans(query, limit, 0)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		if len(summaries) == 0 {
			return mcpText("[]"), nil
		}

		type planResult struct {
			ID        int64  `json:"id"`
			Goal      string `json:"goal"`
			NumSteps  int    `json:"num_steps"`
			CreatedAt string `json:"created_at"`
		}

		results := make([]planResult, len(summaries))
		for i, s := range summaries {
			results[i] = planResult{
				ID:        s.ID,
				Goal:      s.Goal,
				NumSteps:  s.NumSteps,
				CreatedAt: s.CreatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpWeatherAdvice(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		location, err := req.RequireString("location")
		if err != nil {
			return mcpError("location is required"), nil
		}

		days := req.GetInt("days", 5)

		forecast := deps.Forecaster.Forecast(ctx, location, days)

		type dayAdvice struct {
			Date        string  `json:"date"`
			Description string  `json:"description"`
			MinTemp     float64 `json:"min_temp"`
			MaxTemp     float64 `json:"max_temp"`
			Advice      string  `json:"advice"`
		}

		result := struct {
			Location string      `json:"location"`
			Source   string      `json:"source"`
			Days     []dayAdvice `json:"days"`
		}{
			Location: forecast.Location,
			Source:   forecast.Source,
		}
		for _, d := range forecast.Daily {
			result.Days = append(result.Days, dayAdvice{
				Date:        d.Date,
				Description: d.Description,
				MinTemp:     d.MinTemp,
				MaxTemp:     d.MaxTemp,
				Advice:      weather.AdviseDaily(d),
			})
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal forecast: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecentPlans(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summaries, err := deps.Store.ListPlans(10, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list plans: %w", err)
		}

		type planSummary struct {
			ID        int64  `json:"id"`
			Goal      string `json:"goal"`
			NumSteps  int    `json:"num_steps"`
			CreatedAt string `json:"created_at"`
		}

		results := make([]planSummary, len(summaries))
		for i, s := range summaries {
			results[i] = planSummary{
				ID:        s.ID,
				Goal:      s.Goal,
				NumSteps:  s.NumSteps,
				CreatedAt: s.CreatedAt.Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal plans: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
