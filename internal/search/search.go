// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search defines the web search contract used by the research stage
// and a Tavily-backed implementation.
package search

import (
	"context"
	"errors"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// ErrMissingAPIKey is returned when a client is built without credentials.
var ErrMissingAPIKey = errors.New("search API key is not configured")

// Client runs one web search.
type Client interface {
	Search(ctx context.Context, query string, opts Options) (Response, error)
}

// Options tunes a single search call.
type Options struct {
	Depth          types.SearchDepth
	MaxResults     int
	IncludeSummary bool
}

// Response is the outcome of a search: an optional synthesized answer and
// the ranked result list.
type Response struct {
	Summary string   `json:"summary"`
	Results []Result `json:"results"`
}

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Func adapts a function to the Client interface.
type Func func(ctx context.Context, query string, opts Options) (Response, error)

// Search calls f.
func (f Func) Search(ctx context.Context, query string, opts Options) (Response, error) {
	return f(ctx, query, opts)
}
