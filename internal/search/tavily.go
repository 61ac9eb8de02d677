// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/roadmap-engine/internal/httputil"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Declared as a var so tests can
// substitute an httptest server.
var tavilyAPIURL = "https://api.tavily.com/search"

// Tavily queries the Tavily search API.
type Tavily struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

// NewTavily builds a Tavily client from cfg. It fails with ErrMissingAPIKey
// when cfg carries no key.
func NewTavily(cfg types.SearchConfig) (*Tavily, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tavily: %w", ErrMissingAPIKey)
	}
	return &Tavily{
		Client:    &http.Client{Timeout: cfg.Timeout},
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
	}, nil
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search posts the query to Tavily. Throttled responses (429, 503) are
// retried by httputil.DoWithRetry.
func (t *Tavily) Search(ctx context.Context, query string, opts Options) (Response, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:        t.APIKey,
		Query:         query,
		SearchDepth:   string(opts.Depth),
		MaxResults:    opts.MaxResults,
		IncludeAnswer: opts.IncludeSummary,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encoding Tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIURL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, t.Client, req, 0)
	if err != nil {
		return Response{}, fmt.Errorf("Tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Response{}, fmt.Errorf("Tavily API returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Response{}, fmt.Errorf("parsing Tavily response: %w", err)
	}

	out := Response{Summary: tr.Answer, Results: make([]Result, 0, len(tr.Results))}
	for _, r := range tr.Results {
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return out, nil
}
