package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/planweave/planweave/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestCreatePlanRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /plans": `{"id":7,"goal":"visit Jaipur","plan_data":{"total_steps":3,"estimated_total_duration":"21 hours","steps":[{"step_number":1,"title":"Day 1","estimated_duration":"8 hours","detected_location":"Jaipur"}]}}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/plans", map[string]any{"goal": "visit Jaipur"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var created struct {
		ID       int64 `json:"id"`
		PlanData struct {
			TotalSteps int `json:"total_steps"`
		} `json:"plan_data"`
	}
	if err := decodeJSON(resp, &created); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if created.ID != 7 {
		t.Errorf("id = %d, want 7", created.ID)
	}
	if created.PlanData.TotalSteps != 3 {
		t.Errorf("total_steps = %d, want 3", created.PlanData.TotalSteps)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	r := ts.requests[0]
	if r.Method != "POST" {
		t.Errorf("method = %q, want POST", r.Method)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["goal"] != "visit Jaipur" {
		t.Errorf("body.goal = %v, want 'visit Jaipur'", body["goal"])
	}
}

func TestCreateCommand_MissingGoal(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"create"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing goal")
	}
}

func TestListPlans_URLEncoding(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /plans": `{"plans":[],"limit":20,"offset":0}`,
	})

	client := ts.client()
	search := "trip & beach"
	path := fmt.Sprintf("/plans?limit=20&offset=0&search=%s", url.QueryEscape(search))
	resp, err := client.get(ctx, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	reqPath := ts.requests[0].Path
	if strings.Contains(reqPath, "& beach") {
		t.Errorf("search not URL-encoded: %q", reqPath)
	}
	if !strings.Contains(reqPath, "search=trip+%26+beach") {
		t.Errorf("unexpected encoded path: %q", reqPath)
	}
}

func TestShowPlan(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /plans/3": `{"id":3,"goal":"learn Go","plan_data":{"total_steps":5,"steps":[]}}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/plans/3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var plan map[string]any
	if err := decodeJSON(resp, &plan); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if plan["goal"] != "learn Go" {
		t.Errorf("goal = %v, want 'learn Go'", plan["goal"])
	}
}

func TestUpdatePlanBody(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PUT /plans/3": `{"id":3,"goal":"learn Rust"}`,
	})

	client := ts.client()
	resp, err := client.put(ctx, "/plans/3", map[string]any{"goal": "learn Rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var updated struct {
		Goal string `json:"goal"`
	}
	if err := decodeJSON(resp, &updated); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if updated.Goal != "learn Rust" {
		t.Errorf("goal = %q, want 'learn Rust'", updated.Goal)
	}

	var sentBody map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &sentBody); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if sentBody["goal"] != "learn Rust" {
		t.Errorf("body.goal = %v, want 'learn Rust'", sentBody["goal"])
	}
}

func TestDeletePlan(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"DELETE /plans/9": `{"status":"deleted"}`,
	})

	client := ts.client()
	resp, err := client.delete(ctx, "/plans/9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["status"] != "deleted" {
		t.Errorf("status = %q, want deleted", result["status"])
	}
}

func TestReadBody_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"no plans found","type":"not_found_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "test",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/plans/export/json")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	_, err = readBody(resp)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want it to contain '404'", err.Error())
	}
}

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{`attachment; filename=plan_20250601_120000.json`, "plan_20250601_120000.json"},
		{`attachment; filename="plans_4_20250601_120000.csv"`, "plans_4_20250601_120000.csv"},
		{"", ""},
		{"garbage;;;", ""},
	}
	for _, tt := range tests {
		got := filenameFromDisposition(tt.header)
		if got != tt.want {
			t.Errorf("filenameFromDisposition(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestAPIClientNoToken(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	client.token = ""

	resp, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if ts.requests[0].Auth != "" {
		t.Errorf("auth = %q, want empty header without a token", ts.requests[0].Auth)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"authentication_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/plans")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4000
	cfg.Planner.Model = "gpt-4o"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4000" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4000 in ShowAll output")
	}
}

func TestProviderMode(t *testing.T) {
	if got := providerMode(true); got != "live" {
		t.Errorf("providerMode(true) = %q, want live", got)
	}
	if got := providerMode(false); got != "mock data" {
		t.Errorf("providerMode(false) = %q, want 'mock data'", got)
	}
}
