package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/planweave/planweave/internal/cache"
)

func newTestClient(apiKey, engineID string) *Client {
	return NewClient(apiKey, engineID, cache.New(true, time.Minute))
}

func TestSearchMockFallbackJaipur(t *testing.T) {
	c := newTestClient("", "")

	results := c.Search(context.Background(), "things to do in Jaipur", 5)
	if len(results) == 0 {
		t.Fatal("expected mock results")
	}

	foundJaipur := false
	for _, r := range results {
		if r.Source != SourceMock {
			t.Errorf("result %q has source %q, want %q", r.Title, r.Source, SourceMock)
		}
		if strings.Contains(r.Title, "Jaipur") {
			foundJaipur = true
		}
	}
	if !foundJaipur {
		t.Error("no result title mentions Jaipur")
	}
}

func TestSearchMockFallbackGeneric(t *testing.T) {
	c := newTestClient("", "")

	results := c.Search(context.Background(), "quantum knitting", 5)
	if len(results) != 1 {
		t.Fatalf("got %d generic results, want 1", len(results))
	}
	if results[0].Source != SourceMock {
		t.Errorf("source = %q, want %q", results[0].Source, SourceMock)
	}
	if !strings.Contains(results[0].Title, "quantum knitting") {
		t.Errorf("generic result title %q does not echo the query", results[0].Title)
	}
}

func TestSearchLivePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "goa beaches" {
			t.Errorf("query param q = %q, want goa beaches", got)
		}
		if got := r.URL.Query().Get("num"); got != "3" {
			t.Errorf("query param num = %q, want 3", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"title": "Goa Beach Guide", "snippet": "Top beaches.", "link": "https://example.org/goa"},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient("key", "cx")
	c.baseURL = srv.URL

	results := c.Search(context.Background(), "goa beaches", 3)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Source != SourceLive {
		t.Errorf("source = %q, want %q", results[0].Source, SourceLive)
	}
	if results[0].URL != "https://example.org/goa" {
		t.Errorf("url = %q", results[0].URL)
	}
}

func TestSearchServerErrorFallsBackToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient("key", "cx")
	c.baseURL = srv.URL

	results := c.Search(context.Background(), "anything at all", 5)
	if len(results) == 0 {
		t.Fatal("expected mock fallback results")
	}
	for _, r := range results {
		if r.Source != SourceMock {
			t.Errorf("source = %q, want %q", r.Source, SourceMock)
		}
	}
}

func TestSearchResultsAreCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{{"title": "t", "snippet": "s", "link": "u"}},
		})
	}))
	defer srv.Close()

	c := newTestClient("key", "cx")
	c.baseURL = srv.URL

	for i := 0; i < 3; i++ {
		c.Search(context.Background(), "repeated query", 5)
	}
	if calls != 1 {
		t.Errorf("API hit %d times, want 1 (results should be cached)", calls)
	}
}

func TestSearchFallbackIsCachedToo(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient("key", "cx")
	c.baseURL = srv.URL

	for i := 0; i < 3; i++ {
		c.Search(context.Background(), "failing query", 5)
	}
	if calls != 1 {
		t.Errorf("failing API hit %d times, want 1 (fallback results share the cache policy)", calls)
	}
}

func TestSearchNumResultsCappedAtAPILimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("num"); got != "10" {
			t.Errorf("num = %q, want 10", got)
		}
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	c := newTestClient("key", "cx")
	c.baseURL = srv.URL
	c.Search(context.Background(), "wide query", 50)
}
