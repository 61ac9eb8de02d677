// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates tag extraction, research and synthesis
// into a learning roadmap, in batch or as a stream of progress events.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/extract"
	"github.com/pdiddy/roadmap-engine/internal/metrics"
	"github.com/pdiddy/roadmap-engine/internal/synth"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// Extractor runs stage 1. *extract.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, request string) (extract.Result, error)
}

// Researcher runs stage 2. *research.Researcher implements it.
type Researcher interface {
	Research(ctx context.Context, tags []string) ([]types.TechnologyContext, error)
}

// Synthesizer runs stage 3. *synth.Synthesizer implements it.
type Synthesizer interface {
	Synthesize(ctx context.Context, in synth.Input) (*types.RoadmapDocument, error)
	SynthesizeStream(ctx context.Context, in synth.Input) <-chan synth.Event
}

// Sink persists completed roadmaps. *store.Store implements it.
type Sink interface {
	SaveRoadmap(ctx context.Context, doc *types.RoadmapDocument) (string, error)
}

// Pipeline wires the three stages together.
type Pipeline struct {
	extractor   Extractor
	researcher  Researcher
	synthesizer Synthesizer
	sink        Sink
	metrics     *metrics.Metrics
	emitChunks  bool
	log         *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink saves every completed roadmap.
func WithSink(s Sink) Option { return func(p *Pipeline) { p.sink = s } }

// WithMetrics records stage durations and streamed events.
func WithMetrics(m *metrics.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

// WithChunks forwards raw synthesis text increments as progress events.
func WithChunks(on bool) Option { return func(p *Pipeline) { p.emitChunks = on } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a Pipeline over the given stages.
func New(e Extractor, r Researcher, s Synthesizer, opts ...Option) *Pipeline {
	p := &Pipeline{extractor: e, researcher: r, synthesizer: s, log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run executes all three stages. On failure the returned State is in
// StageFailed, carries the diagnostic, and the error is a *StageError.
func (p *Pipeline) Run(ctx context.Context, request string) (State, error) {
	s, err := p.Analyze(ctx, request)
	if err != nil {
		return s, err
	}
	return p.SynthesizeFrom(ctx, s)
}

// Analyze executes extraction and research only.
func (p *Pipeline) Analyze(ctx context.Context, request string) (State, error) {
	s := State{RequestText: request}

	s = s.enter(StageExtracting)
	d, err := p.extract(ctx, s)
	if err != nil {
		return p.fail(s, err)
	}
	s = s.merge(d)

	s = s.enter(StageResearching)
	d, err = p.research(ctx, s)
	if err != nil {
		return p.fail(s, err)
	}
	return s.merge(d), nil
}

// SynthesizeFrom executes synthesis from caller-supplied tags, sub-tags
// and research context.
func (p *Pipeline) SynthesizeFrom(ctx context.Context, s State) (State, error) {
	s = s.enter(StageSynthesizing)
	start := time.Now()
	doc, err := p.synthesizer.Synthesize(ctx, inputFor(s))
	p.metrics.ObserveStage(string(StageSynthesizing), err, time.Since(start))
	if err != nil {
		return p.fail(s, err)
	}
	s = s.merge(Delta{Roadmap: doc})
	return p.complete(ctx, s), nil
}

func (p *Pipeline) extract(ctx context.Context, s State) (Delta, error) {
	start := time.Now()
	res, err := p.extractor.Extract(ctx, s.RequestText)
	p.metrics.ObserveStage(string(StageExtracting), err, time.Since(start))
	if err != nil {
		return Delta{}, err
	}
	return Delta{Tags: res.Tags, SubTags: res.SubTags}, nil
}

func (p *Pipeline) research(ctx context.Context, s State) (Delta, error) {
	start := time.Now()
	contexts, err := p.researcher.Research(ctx, s.Tags)
	p.metrics.ObserveStage(string(StageResearching), err, time.Since(start))
	if err != nil {
		return Delta{}, err
	}
	return Delta{ResearchContext: contexts}, nil
}

func (p *Pipeline) complete(ctx context.Context, s State) State {
	if p.sink != nil && s.Roadmap != nil {
		id, err := p.sink.SaveRoadmap(ctx, s.Roadmap)
		if err != nil {
			p.log.Warn("could not save roadmap", zap.Error(err))
		} else {
			s.RoadmapID = id
		}
	}
	p.log.Info("pipeline completed",
		zap.Strings("tags", s.Tags),
		zap.Int("technologies", len(s.Roadmap.Technologies)),
		zap.String("roadmap_id", s.RoadmapID))
	return s.enter(StageCompleted)
}

func (p *Pipeline) fail(s State, err error) (State, error) {
	stage := s.CurrentStage
	p.log.Warn("pipeline failed", zap.String("stage", string(stage)), zap.Error(err))
	s.Error = err.Error()
	return s.enter(StageFailed), &StageError{Stage: stage, Err: err}
}

func inputFor(s State) synth.Input {
	return synth.Input{
		RequestText: s.RequestText,
		Tags:        s.Tags,
		SubTags:     s.SubTags,
		Research:    s.ResearchContext,
	}
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
