// Package api implements the planweave HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/planweave/planweave/internal/export"
	"github.com/planweave/planweave/internal/pipeline"
	"github.com/planweave/planweave/internal/plan"
	"github.com/planweave/planweave/internal/planner"
	"github.com/planweave/planweave/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

const maxGoalLength = 500

type Deps struct {
	Store    *storage.Store
	Planner  planner.Generator
	Enricher *pipeline.Enricher
	Exporter *export.Exporter
	Token    string // empty disables bearer auth
}

// NewHandler returns the planweave REST API router. /health is always open;
// every other route requires a bearer token when one is configured.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}

		r.Post("/plans", handleCreatePlan(deps))
		r.Get("/plans", handleListPlans(deps))
		// Registered before /plans/{id} so "export" is not parsed as an id.
		r.Get("/plans/export/{format}", handleExportPlans(deps))
		r.Get("/plans/{id}", handleGetPlan(deps))
		r.Put("/plans/{id}", handleUpdatePlan(deps))
		r.Delete("/plans/{id}", handleDeletePlan(deps))
		r.Get("/plans/{id}/export/{format}", handleExportPlan(deps))
		r.Get("/stats", handleStats(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type CreatePlanRequest struct {
	Goal string `json:"goal"`
}

type UpdatePlanRequest struct {
	Goal string `json:"goal"`
}

// PlanResponse wraps a stored plan for API responses.
type PlanResponse struct {
	ID        int64     `json:"id"`
	Goal      string    `json:"goal"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PlanData  plan.Plan `json:"plan_data"`
}

type PlanListResponse struct {
	Plans       []PlanSummary `json:"plans"`
	Limit       int           `json:"limit"`
	Offset      int           `json:"offset"`
	SearchQuery string        `json:"search_query,omitempty"`
}

type PlanSummary struct {
	ID        int64     `json:"id"`
	Goal      string    `json:"goal"`
	NumSteps  int       `json:"num_steps"`
	CreatedAt time.Time `json:"created_at"`
}

func handleCreatePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req CreatePlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		goal := strings.TrimSpace(req.Goal)
		if goal == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "goal is required")
			return
		}
		if len(goal) > maxGoalLength {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "goal must be at most %d characters", maxGoalLength)
			return
		}

		slog.Info("creating plan", "goal", goal)

		steps := deps.Planner.GenerateSteps(r.Context(), goal)
		if len(steps) == 0 {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to generate plan steps")
			return
		}
		enriched := deps.Enricher.Enrich(r.Context(), steps)
		assembled := plan.Assemble(goal, enriched)

		planJSON, err := json.Marshal(assembled)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to encode plan: %v", err)
			return
		}

		id, err := deps.Store.SavePlan(goal, string(planJSON), assembled.TotalSteps)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save plan: %v", err)
			return
		}

		record, err := deps.Store.GetPlan(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load saved plan: %v", err)
			return
		}

		resp, err := toPlanResponse(record)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}

		slog.Info("plan created", "id", id, "steps", assembled.TotalSteps)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}
}

func handleListPlans(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := clampLimit(parseIntParam(r, "limit", 50))
		offset := parseIntParam(r, "offset", 0)

		search := normalizeSearch(r.URL.Query().Get("search"))

		var (
			summaries []storage.PlanSummary
			err       error
		)
		if search != "" {
			summaries, err = deps.Store.SearchPlans(search, limit, offset)
		} else {
			summaries, err = deps.Store.ListPlans(limit, offset)
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list plans: %v", err)
			return
		}

		resp := PlanListResponse{
			Plans:       make([]PlanSummary, 0, len(summaries)),
			Limit:       limit,
			Offset:      offset,
			SearchQuery: search,
		}
		for _, s := range summaries {
			resp.Plans = append(resp.Plans, PlanSummary{
				ID:        s.ID,
				Goal:      s.Goal,
				NumSteps:  s.NumSteps,
				CreatedAt: s.CreatedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleGetPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := planID(w, r)
		if !ok {
			return
		}

		record, err := deps.Store.GetPlan(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get plan: %v", err)
			return
		}

		resp, err := toPlanResponse(record)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleUpdatePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := planID(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req UpdatePlanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		goal := strings.TrimSpace(req.Goal)
		if goal == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "goal is required")
			return
		}

		record, err := deps.Store.GetPlan(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get plan: %v", err)
			return
		}

		var doc plan.Plan
		if err := json.Unmarshal([]byte(record.PlanJSON), &doc); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "stored plan is corrupt: %v", err)
			return
		}
		doc.Goal = goal

		planJSON, err := json.Marshal(doc)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to encode plan: %v", err)
			return
		}

		if err := deps.Store.UpdatePlan(id, goal, string(planJSON), doc.TotalSteps); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update plan: %v", err)
			return
		}

		updated, err := deps.Store.GetPlan(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load updated plan: %v", err)
			return
		}
		resp, err := toPlanResponse(updated)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleDeletePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := planID(w, r)
		if !ok {
			return
		}

		err := deps.Store.DeletePlan(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete plan: %v", err)
			return
		}

		slog.Info("plan deleted", "id", id)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

func handleExportPlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := planID(w, r)
		if !ok {
			return
		}

		format, err := export.ParseFormat(chi.URLParam(r, "format"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		record, err := deps.Store.GetPlan(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "plan not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get plan: %v", err)
			return
		}

		records, err := toExportRecords([]storage.PlanRecord{record})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}

		writeExport(w, deps.Exporter, format, records)
	}
}

func handleExportPlans(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := export.ParseFormat(chi.URLParam(r, "format"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}

		search := normalizeSearch(r.URL.Query().Get("search"))

		var stored []storage.PlanRecord
		if search != "" {
			limit := clampLimit(parseIntParam(r, "limit", 50))
			summaries, err := deps.Store.SearchPlans(search, limit, 0)
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to list plans: %v", err)
				return
			}
			stored = make([]storage.PlanRecord, 0, len(summaries))
			for _, s := range summaries {
				record, err := deps.Store.GetPlan(s.ID)
				if err != nil {
					httpError(w, http.StatusInternalServerError, "api_error", "failed to load plan %d: %v", s.ID, err)
					return
				}
				stored = append(stored, record)
			}
		} else {
			stored, err = deps.Store.AllPlans()
			if err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to list plans: %v", err)
				return
			}
		}
		if len(stored) == 0 {
			httpError(w, http.StatusNotFound, "not_found", "no plans found")
			return
		}

		records, err := toExportRecords(stored)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
			return
		}

		writeExport(w, deps.Exporter, format, records)
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Store.GetStats()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get statistics: %v", err)
			return
		}

		resp := map[string]any{
			"total_plans": stats.TotalPlans,
			"avg_steps":   stats.AvgSteps,
		}
		if !stats.NewestPlanAt.IsZero() {
			resp["newest_plan_at"] = stats.NewestPlanAt
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func writeExport(w http.ResponseWriter, e *export.Exporter, format export.Format, records []export.Record) {
	content, err := e.Render(format, records)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to render export: %v", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", e.Filename(format, len(records))))
	w.Write([]byte(content))
}

func toPlanResponse(record storage.PlanRecord) (PlanResponse, error) {
	var doc plan.Plan
	if err := json.Unmarshal([]byte(record.PlanJSON), &doc); err != nil {
		return PlanResponse{}, fmt.Errorf("stored plan %d is corrupt: %w", record.ID, err)
	}
	return PlanResponse{
		ID:        record.ID,
		Goal:      record.Goal,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		PlanData:  doc,
	}, nil
}

func toExportRecords(stored []storage.PlanRecord) ([]export.Record, error) {
	records := make([]export.Record, 0, len(stored))
	for _, r := range stored {
		var doc plan.Plan
		if err := json.Unmarshal([]byte(r.PlanJSON), &doc); err != nil {
			return nil, fmt.Errorf("stored plan %d is corrupt: %w", r.ID, err)
		}
		records = append(records, export.Record{
			ID:        r.ID,
			Goal:      r.Goal,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Plan:      doc,
		})
	}
	return records, nil
}

// planID parses and validates the {id} path parameter, writing an error
// response when it is invalid.
func planID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid plan id")
		return 0, false
	}
	return id, true
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}

func clampLimit(v int) int {
	if v < 1 {
		return 1
	}
	if v > 100 {
		return 100
	}
	return v
}

// normalizeSearch trims and truncates a search query; queries shorter than
// two characters are ignored.
func normalizeSearch(q string) string {
	q = strings.TrimSpace(q)
	if len(q) > 100 {
		q = q[:100]
	}
	if len(q) < 2 {
		return ""
	}
	return q
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
