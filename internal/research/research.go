// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research looks up every extracted technology against a web search
// service concurrently. A failed lookup never fails the stage: it yields a
// diagnostic context for that tag while the others proceed.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/roadmap-engine/internal/metrics"
	"github.com/pdiddy/roadmap-engine/internal/search"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

var (
	// ErrNoTags is returned when Research is called with no tags.
	ErrNoTags = errors.New("no tags to research")

	// ErrNoClient is returned when the Researcher has no client factory.
	ErrNoClient = errors.New("no search client configured")
)

const (
	defaultMaxResults = 5
	maxLinks          = 5
	snippetCount      = 3
	snippetRunes      = 200
)

// ClientFactory builds the search client for one Research call.
type ClientFactory func() (search.Client, error)

// Static returns a ClientFactory that always yields c.
func Static(c search.Client) ClientFactory {
	return func() (search.Client, error) { return c, nil }
}

// Cache stores successful lookups between runs. *store.Store implements it.
type Cache interface {
	CachedResearch(ctx context.Context, tag string, maxAge time.Duration) (types.TechnologyContext, bool, error)
	CacheResearch(ctx context.Context, tc types.TechnologyContext) error
}

// Researcher runs the research stage.
type Researcher struct {
	factory ClientFactory
	cfg     types.SearchConfig
	cache   Cache
	metrics *metrics.Metrics
	log     *zap.Logger
}

// Option configures a Researcher.
type Option func(*Researcher)

// WithCache enables the research cache. Entries older than
// SearchConfig.CacheTTL are ignored; a zero TTL disables the cache.
func WithCache(c Cache) Option { return func(r *Researcher) { r.cache = c } }

// WithMetrics records lookup outcomes.
func WithMetrics(m *metrics.Metrics) Option { return func(r *Researcher) { r.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Researcher) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a Researcher that builds its client with factory.
func New(factory ClientFactory, cfg types.SearchConfig, opts ...Option) *Researcher {
	r := &Researcher{factory: factory, cfg: cfg, log: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Research returns one TechnologyContext per tag, in tag order. Lookups run
// concurrently and each writes only its own slot. The only terminal errors
// are an empty tag list, a client that cannot be built, and cancellation.
func (r *Researcher) Research(ctx context.Context, tags []string) ([]types.TechnologyContext, error) {
	if len(tags) == 0 {
		return nil, ErrNoTags
	}
	if r.factory == nil {
		return nil, ErrNoClient
	}
	client, err := r.factory()
	if err != nil {
		return nil, fmt.Errorf("building search client: %w", err)
	}

	r.log.Info("researching technologies", zap.Int("count", len(tags)))

	results := make([]types.TechnologyContext, len(tags))
	var g errgroup.Group
	if r.cfg.MaxConcurrency > 0 {
		g.SetLimit(r.cfg.MaxConcurrency)
	}
	for i, tag := range tags {
		g.Go(func() error {
			results[i] = r.lookup(ctx, client, tag)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Researcher) lookup(ctx context.Context, client search.Client, tag string) types.TechnologyContext {
	log := r.log.With(zap.String("tag", tag))

	if tc, ok := r.cached(ctx, tag, log); ok {
		r.metrics.RecordLookup(metrics.LookupCached)
		log.Debug("research cache hit")
		return tc
	}

	resp, err := client.Search(ctx, r.query(tag), r.options())
	if err != nil {
		r.metrics.RecordLookup(metrics.LookupFailed)
		log.Warn("research failed", zap.Error(err))
		return Failed(tag, err)
	}

	tc := FromResponse(tag, resp)
	r.metrics.RecordLookup(metrics.LookupOK)
	log.Info("researched technology", zap.Int("links", len(tc.Links)))

	// Placeholders are not cached so a later lookup can find real results.
	if r.cacheEnabled() && tc.Summary != Placeholder(tag) {
		if err := r.cache.CacheResearch(ctx, tc); err != nil {
			log.Warn("could not cache research", zap.Error(err))
		}
	}
	return tc
}

func (r *Researcher) cacheEnabled() bool {
	return r.cache != nil && r.cfg.CacheTTL > 0
}

func (r *Researcher) cached(ctx context.Context, tag string, log *zap.Logger) (types.TechnologyContext, bool) {
	if !r.cacheEnabled() {
		return types.TechnologyContext{}, false
	}
	tc, ok, err := r.cache.CachedResearch(ctx, tag, r.cfg.CacheTTL)
	if err != nil {
		log.Warn("research cache lookup failed", zap.Error(err))
		return types.TechnologyContext{}, false
	}
	return tc, ok
}

func (r *Researcher) query(tag string) string {
	return strings.TrimSpace(tag + " " + r.cfg.QuerySuffix)
}

func (r *Researcher) options() search.Options {
	opts := search.Options{
		Depth:          r.cfg.Depth,
		MaxResults:     r.cfg.MaxResults,
		IncludeSummary: true,
	}
	if opts.Depth == "" {
		opts.Depth = types.DepthAdvanced
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	return opts
}

// Failed is the context recorded for a tag whose lookup failed.
func Failed(tag string, err error) types.TechnologyContext {
	return types.TechnologyContext{
		Name:    tag,
		Summary: "Research failed: " + err.Error(),
		Links:   []types.Link{},
	}
}

// FromResponse builds the context for tag from a search response.
//
// The summary is the service answer when present, else the leading runes of
// the top results, else a placeholder. Links come from the first results
// that carry both a title and a URL.
func FromResponse(tag string, resp search.Response) types.TechnologyContext {
	summary := strings.TrimSpace(resp.Summary)
	if summary == "" {
		summary = snippetSummary(resp.Results)
	}
	if summary == "" {
		summary = Placeholder(tag)
	}

	links := []types.Link{}
	for i, res := range resp.Results {
		if i >= maxLinks {
			break
		}
		if res.Title == "" || res.URL == "" {
			continue
		}
		links = append(links, types.Link{Title: res.Title, URL: res.URL})
	}

	return types.TechnologyContext{Name: tag, Summary: summary, Links: links}
}

// Placeholder is the summary used when a search returns nothing usable.
func Placeholder(tag string) string {
	return tag + "に関するプログラミング技術の情報です。"
}

func snippetSummary(results []search.Result) string {
	var parts []string
	for i, res := range results {
		if i >= snippetCount {
			break
		}
		s := truncateRunes(strings.TrimSpace(res.Content), snippetRunes)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
