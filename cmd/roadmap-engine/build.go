// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/extract"
	"github.com/pdiddy/roadmap-engine/internal/keywords"
	"github.com/pdiddy/roadmap-engine/internal/llm"
	"github.com/pdiddy/roadmap-engine/internal/metrics"
	"github.com/pdiddy/roadmap-engine/internal/pipeline"
	"github.com/pdiddy/roadmap-engine/internal/research"
	"github.com/pdiddy/roadmap-engine/internal/search"
	"github.com/pdiddy/roadmap-engine/internal/store"
	"github.com/pdiddy/roadmap-engine/internal/synth"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

func keywordSource(c types.ExtractionConfig) *keywords.Lookup {
	if c.KeywordsDir != "" {
		return keywords.New(os.DirFS(c.KeywordsDir))
	}
	return keywords.Builtin()
}

func newExtractor(c types.PipelineConfig, completer llm.Completer) *extract.Extractor {
	return extract.New(completer, keywordSource(c.Extraction),
		extract.WithLogger(logger.Named("extract")),
		extract.WithMaxRetries(c.AI.MaxRetries),
		extract.WithMinRelevance(c.Extraction.MinRelevance))
}

// newResearcher builds the research stage. The Tavily client is created
// lazily so commands that fail earlier do not need a search key.
func newResearcher(c types.PipelineConfig, m *metrics.Metrics, cache research.Cache) *research.Researcher {
	factory := func() (search.Client, error) { return search.NewTavily(c.Search) }
	opts := []research.Option{
		research.WithLogger(logger.Named("research")),
		research.WithMetrics(m),
	}
	if cache != nil {
		opts = append(opts, research.WithCache(cache))
	}
	return research.New(factory, c.Search, opts...)
}

func newSynthesizer(c types.PipelineConfig, completer llm.Completer) *synth.Synthesizer {
	return synth.New(completer,
		synth.WithLogger(logger.Named("synth")),
		synth.WithMaxRetries(c.AI.MaxRetries),
		synth.WithMaxLinks(c.Synthesis.MaxLinksPerTechnology))
}

// app holds the wired pipeline and the store it persists to.
type app struct {
	pipeline *pipeline.Pipeline
	store    *store.Store
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("closing store", zap.Error(err))
		}
	}
}

// newApp wires every stage. When persist is set, completed roadmaps are
// saved and research results cached in the store.
func newApp(c types.PipelineConfig, persist bool) (*app, error) {
	completer, err := llm.New(c.AI)
	if err != nil {
		return nil, err
	}

	a := &app{}
	var cache research.Cache
	if persist {
		a.store, err = store.Open(c.Store)
		if err != nil {
			return nil, err
		}
		cache = a.store
	}

	m := metrics.New()
	opts := []pipeline.Option{
		pipeline.WithLogger(logger.Named("pipeline")),
		pipeline.WithMetrics(m),
		pipeline.WithChunks(c.Synthesis.EmitChunks),
	}
	if a.store != nil {
		opts = append(opts, pipeline.WithSink(a.store))
	}
	a.pipeline = pipeline.New(
		newExtractor(c, completer),
		newResearcher(c, m, cache),
		newSynthesizer(c, completer),
		opts...,
	)
	return a, nil
}
