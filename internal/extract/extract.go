// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a free-text learning request into canonical
// technology tags plus high-relevance keyword sub-tags.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/llm"
	"github.com/pdiddy/roadmap-engine/internal/llmjson"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

var (
	// ErrEmptyInput is returned for an empty or whitespace-only request.
	ErrEmptyInput = errors.New("request text is empty")

	// ErrParseFailed is returned when no JSON object can be recovered from
	// the model response.
	ErrParseFailed = errors.New("failed to extract tags")

	// ErrNoTags is returned when the response parses but names no tags.
	ErrNoTags = errors.New("no tags found in request")
)

// defaultMinRelevance is the lowest keyword relevance kept as a sub-tag.
const defaultMinRelevance = 4

// SubTagSource resolves a technology to its keyword sub-tags.
// *keywords.Lookup implements it.
type SubTagSource interface {
	SubTags(technology string, minRelevance int) ([]types.SubTag, error)
}

// Result is the output of one extraction.
type Result struct {
	Tags      []string       `json:"tags"`
	SubTags   []types.SubTag `json:"sub_tags"`
	Reasoning string         `json:"reasoning,omitempty"`
}

// aiResponse is the JSON object the model is asked to produce.
type aiResponse struct {
	Tags      []string `json:"tags"`
	Reasoning string   `json:"reasoning"`
}

// Extractor runs tag extraction against a completion service.
type Extractor struct {
	completer    llm.Completer
	keywords     SubTagSource
	minRelevance int
	maxRetries   int
	log          *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMaxRetries sets the number of transport retries (default 3).
func WithMaxRetries(n int) Option {
	return func(e *Extractor) { e.maxRetries = n }
}

// WithMinRelevance sets the keyword relevance threshold (default 4).
func WithMinRelevance(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minRelevance = n
		}
	}
}

// New returns an Extractor. keywords may be nil, in which case no sub-tags
// are produced.
func New(c llm.Completer, keywords SubTagSource, opts ...Option) *Extractor {
	e := &Extractor{
		completer:    c,
		keywords:     keywords,
		minRelevance: defaultMinRelevance,
		maxRetries:   3,
		log:          zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract calls the completion service once and returns the deduplicated
// tags along with their sub-tags. Transport failures are retried with
// backoff; a response that cannot be parsed is not.
func (e *Extractor) Extract(ctx context.Context, request string) (Result, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return Result{}, ErrEmptyInput
	}

	messages, err := buildMessages(request)
	if err != nil {
		return Result{}, fmt.Errorf("rendering prompt: %w", err)
	}

	e.log.Debug("invoking completion service", zap.Int("request_len", len(request)))
	text, err := llm.InvokeWithRetry(ctx, e.completer, messages, e.maxRetries)
	if err != nil {
		return Result{}, fmt.Errorf("calling completion service: %w", err)
	}

	resp, tier, err := llmjson.Decode[aiResponse](text)
	if err != nil {
		e.log.Warn("unparsable extraction response", zap.Int("response_len", len(text)))
		return Result{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	e.log.Debug("decoded extraction response", zap.Stringer("tier", tier))

	tags := dedupe(resp.Tags)
	if len(tags) == 0 {
		return Result{}, ErrNoTags
	}

	result := Result{Tags: tags, Reasoning: resp.Reasoning}
	for _, tag := range tags {
		result.SubTags = append(result.SubTags, e.subTags(tag)...)
	}

	e.log.Info("extracted tags",
		zap.Strings("tags", tags),
		zap.Int("sub_tags", len(result.SubTags)),
		zap.String("reasoning", resp.Reasoning))
	return result, nil
}

func (e *Extractor) subTags(tag string) []types.SubTag {
	if e.keywords == nil {
		return nil
	}
	st, err := e.keywords.SubTags(tag, e.minRelevance)
	if err != nil {
		e.log.Warn("skipping keyword file", zap.String("tag", tag), zap.Error(err))
		return nil
	}
	if len(st) > 0 {
		e.log.Debug("loaded sub-tags", zap.String("tag", tag), zap.Int("count", len(st)))
	}
	return st
}

// dedupe trims tags, drops empty ones, and removes duplicates keeping the
// first occurrence.
func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
