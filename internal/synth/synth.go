// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth generates the roadmap document from tags, sub-tags and
// research context, either in one call or as a stream of progressively
// parsed snapshots.
package synth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/llm"
	"github.com/pdiddy/roadmap-engine/internal/llmjson"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

var (
	// ErrNoContext is returned when there is no research context to build from.
	ErrNoContext = errors.New("no technology context available")

	// ErrNoTags is returned when there are no tags to build a roadmap for.
	ErrNoTags = errors.New("no tags to synthesize")

	// ErrParseFailed is returned when the response holds no roadmap object.
	ErrParseFailed = errors.New("failed to parse roadmap JSON")
)

// Input is everything synthesis reads from the pipeline state.
type Input struct {
	RequestText string
	Tags        []string
	SubTags     []types.SubTag
	Research    []types.TechnologyContext
}

func (in Input) validate() error {
	if len(in.Research) == 0 {
		return ErrNoContext
	}
	if len(in.Tags) == 0 {
		return ErrNoTags
	}
	return nil
}

// Synthesizer runs the synthesis stage.
type Synthesizer struct {
	completer  llm.Completer
	maxRetries int
	maxLinks   int
	log        *zap.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxRetries sets the transport retries for batch generation (default 3).
// Streaming generation is never retried.
func WithMaxRetries(n int) Option { return func(s *Synthesizer) { s.maxRetries = n } }

// WithMaxLinks caps the research links per technology in the prompt.
func WithMaxLinks(n int) Option { return func(s *Synthesizer) { s.maxLinks = n } }

// New returns a Synthesizer backed by c.
func New(c llm.Completer, opts ...Option) *Synthesizer {
	s := &Synthesizer{completer: c, maxRetries: 3, maxLinks: DefaultMaxLinks, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize generates the full roadmap with one completion call.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (*types.RoadmapDocument, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	messages, err := BuildMessages(in, s.maxLinks)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	s.log.Info("generating roadmap", zap.Strings("tags", in.Tags), zap.Int("contexts", len(in.Research)))
	text, err := llm.InvokeWithRetry(ctx, s.completer, messages, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("calling completion service: %w", err)
	}

	doc, err := ParseRoadmap(text)
	if err != nil {
		s.log.Warn("unparsable roadmap response", zap.Int("response_len", len(text)))
		return nil, err
	}
	attachMetadata(doc, in)

	s.log.Info("generated roadmap", zap.Int("technologies", len(doc.Technologies)))
	return doc, nil
}

// ParseRoadmap recovers a roadmap document from a complete response.
func ParseRoadmap(text string) (*types.RoadmapDocument, error) {
	doc, _, err := llmjson.Decode[types.RoadmapDocument](text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return &doc, nil
}

func attachMetadata(doc *types.RoadmapDocument, in Input) {
	doc.UserRequest = in.RequestText
	doc.ExtractedTags = append([]string(nil), in.Tags...)
}
