// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// CachedResearch returns the research context cached for tag if it was
// fetched within maxAge.
func (s *Store) CachedResearch(ctx context.Context, tag string, maxAge time.Duration) (types.TechnologyContext, bool, error) {
	var summary, linksJSON, fetched string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary, links, fetched_at FROM research_cache WHERE tag = ?`, tag,
	).Scan(&summary, &linksJSON, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TechnologyContext{}, false, nil
	}
	if err != nil {
		return types.TechnologyContext{}, false, fmt.Errorf("looking up research cache: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, fetched)
	if err != nil || s.now().Sub(at) > maxAge {
		return types.TechnologyContext{}, false, nil
	}

	tc := types.TechnologyContext{Name: tag, Summary: summary, Links: []types.Link{}}
	if err := json.Unmarshal([]byte(linksJSON), &tc.Links); err != nil {
		return types.TechnologyContext{}, false, fmt.Errorf("decoding cached links for %s: %w", tag, err)
	}
	return tc, true, nil
}

// CacheResearch stores tc, replacing any earlier entry for the same tag.
func (s *Store) CacheResearch(ctx context.Context, tc types.TechnologyContext) error {
	links := tc.Links
	if links == nil {
		links = []types.Link{}
	}
	linksJSON, _ := json.Marshal(links)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO research_cache (tag, summary, links, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(tag) DO UPDATE SET
			summary=excluded.summary, links=excluded.links, fetched_at=excluded.fetched_at`,
		tc.Name, tc.Summary, string(linksJSON), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("caching research for %s: %w", tc.Name, err)
	}
	return nil
}
