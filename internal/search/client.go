// Package search wraps the Google Custom Search API behind a client that
// never fails: transport errors, bad responses, and missing credentials all
// degrade to deterministic mock results tagged with their provenance.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/planweave/planweave/internal/cache"
)

const (
	defaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	apiMaxResults  = 10
	requestTimeout = 10 * time.Second
	resultTTL      = time.Hour

	// SourceLive tags results returned by the live search API.
	SourceLive = "google_search"
	// SourceMock tags synthetic results produced when the API is
	// unavailable or uncredentialed.
	SourceMock = "mock_data"
)

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

// Client performs web searches. With empty credentials it serves mock
// results for its whole lifetime.
type Client struct {
	apiKey     string
	engineID   string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
}

// NewClient creates a search client. apiKey and engineID may be empty, in
// which case every search takes the synthetic path.
func NewClient(apiKey, engineID string, c *cache.Cache) *Client {
	if apiKey == "" || engineID == "" {
		slog.Warn("search API credentials not configured, using mock data")
	}
	return &Client{
		apiKey:     apiKey,
		engineID:   engineID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      c,
	}
}

// Search returns up to numResults hits for query, most relevant first.
// It never returns an error: any failure falls back to mock results, and
// both live and mock outcomes are cached under the same key so repeated
// failures do not repeatedly hit the failing API within the TTL window.
func (c *Client) Search(ctx context.Context, query string, numResults int) []Result {
	if numResults <= 0 {
		numResults = 5
	}
	if numResults > apiMaxResults {
		numResults = apiMaxResults
	}

	key := cache.Key("web_search", query, numResults)
	results, _ := cache.Do(c.cache, key, resultTTL, func() ([]Result, error) {
		return c.search(ctx, query, numResults), nil
	})
	return results
}

func (c *Client) search(ctx context.Context, query string, numResults int) []Result {
	if c.apiKey == "" || c.engineID == "" {
		return mockResults(query)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		slog.Warn("building search request failed", "error", err)
		return mockResults(query)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("search API request failed", "error", err)
		return mockResults(query)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("search API returned non-OK status", "status", resp.StatusCode)
		return mockResults(query)
	}

	var payload struct {
		Items []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("decoding search response failed", "error", err)
		return mockResults(query)
	}

	results := make([]Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
			Source:  SourceLive,
		})
	}
	return results
}

// SearchTopic searches for a specific kind of information about a topic,
// e.g. SearchTopic(ctx, "jaipur", "restaurants").
func (c *Client) SearchTopic(ctx context.Context, topic, infoType string) []Result {
	return c.Search(ctx, fmt.Sprintf("%s %s", topic, infoType), 3)
}
