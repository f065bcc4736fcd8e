// Package search retrieves evidence snippets for a claim through SerpAPI.
// Evidence is a quality signal, not a correctness dependency: callers treat
// any failure here as degradable.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// resultCount caps organic results per query to keep quota spend flat.
const resultCount = 3

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type organicResult struct {
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error,omitempty"`
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		// SerpAPI free-tier friendly: one query per second, small burst.
		limiter: rate.NewLimiter(rate.Limit(1), 3),
	}
}

// Snippets runs a google-engine query for the claim verbatim and joins the
// non-empty snippets of the top organic results with newlines.
func (c *Client) Snippets(ctx context.Context, claim string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("q", claim)
	q.Set("api_key", c.apiKey)
	q.Set("engine", "google")
	q.Set("num", strconv.Itoa(resultCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search: status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("search: %s", result.Error)
	}

	var snippets []string
	for _, r := range result.OrganicResults {
		if r.Snippet != "" {
			snippets = append(snippets, r.Snippet)
		}
	}
	return strings.Join(snippets, "\n"), nil
}
