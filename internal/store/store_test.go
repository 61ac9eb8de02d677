// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// clock returns a controllable time source starting at now.
func clock(s *Store, start time.Time) *time.Time {
	now := start
	s.now = func() time.Time { return now }
	return &now
}

func sampleRoadmap(title string, tags ...string) *types.RoadmapDocument {
	return &types.RoadmapDocument{
		Title: title,
		Technologies: []types.TechnologyRoadmap{{
			Name:    tags[0],
			Summary: "overview",
			Phases: []types.LearningPhase{{
				PhaseName: "Foundations",
				Order:     1,
				Steps: []types.LearningStep{{
					Topic:         "Setup",
					EstimatedTime: "2 hours",
					SourceLinks:   []types.Link{{Title: "docs", URL: "https://example.com"}},
				}},
			}},
		}},
		UserRequest:   "learn " + tags[0],
		ExtractedTags: tags,
	}
}

// --- roadmaps ---

func TestSaveAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	doc := sampleRoadmap("Web roadmap", "React", "Next.js")

	id, err := s.SaveRoadmap(ctx, doc)
	require.NoError(t, err)
	require.Len(t, id, 36, "ids are UUIDs")

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "Web roadmap", rec.Title)
	assert.Equal(t, "learn React", rec.Request)
	assert.Equal(t, []string{"React", "Next.js"}, rec.Tags)
	assert.Equal(t, 1, rec.Technologies)
	assert.Equal(t, doc, rec.Roadmap)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestSaveNil(t *testing.T) {
	_, err := testStore(t).SaveRoadmap(context.Background(), nil)
	assert.Error(t, err)
}

func TestGetMissing(t *testing.T) {
	_, err := testStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := clock(s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	var ids []string
	for _, doc := range []*types.RoadmapDocument{
		sampleRoadmap("first", "React"),
		sampleRoadmap("second", "Go"),
		sampleRoadmap("third", "React", "TypeScript"),
	} {
		id, err := s.SaveRoadmap(ctx, doc)
		require.NoError(t, err)
		ids = append(ids, id)
		*now = now.Add(time.Minute)
	}

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].Title, all[1].Title, all[2].Title})
	assert.Equal(t, ids[2], all[0].ID)

	limited, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "third", limited[0].Title)
}

func TestListByTag(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	for _, doc := range []*types.RoadmapDocument{
		sampleRoadmap("a", "React"),
		sampleRoadmap("b", "Go"),
		sampleRoadmap("c", "TypeScript", "React"),
	} {
		_, err := s.SaveRoadmap(ctx, doc)
		require.NoError(t, err)
	}

	tests := []struct {
		tag  string
		want int
	}{
		{"React", 2},
		{"Go", 1},
		{"Rust", 0},
		{"", 3},
	}
	for _, tt := range tests {
		got, err := s.List(ctx, ListOptions{Tag: tt.tag})
		require.NoError(t, err)
		assert.Len(t, got, tt.want, tt.tag)
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	id, err := s.SaveRoadmap(ctx, sampleRoadmap("x", "Go"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(types.StoreConfig{DataDir: dir})
	require.NoError(t, err)
	id, err := s.SaveRoadmap(context.Background(), sampleRoadmap("kept", "Go"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(types.StoreConfig{DataDir: dir})
	require.NoError(t, err)
	defer s.Close()
	rec, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "kept", rec.Title)
}

// --- export ---

func TestExportJSON(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.SaveRoadmap(ctx, sampleRoadmap("a", "React"))
	require.NoError(t, err)
	_, err = s.SaveRoadmap(ctx, sampleRoadmap("b", "Go"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &buf, ListOptions{Tag: "Go"}))

	var got []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "Go", got[0].Roadmap.Technologies[0].Name)
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testStore(t).ExportJSON(context.Background(), &buf, ListOptions{}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.SaveRoadmap(ctx, sampleRoadmap("yaml roadmap", "TypeScript"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, ListOptions{}))
	assert.Contains(t, buf.String(), "roadmap_title: yaml roadmap")

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "yaml roadmap", got[0]["title"])
	assert.Contains(t, got[0], "roadmap")
}

// --- research cache ---

func TestResearchCache(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := clock(s, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	_, ok, err := s.CachedResearch(ctx, "React", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	tc := types.TechnologyContext{
		Name:    "React",
		Summary: "A UI library.",
		Links:   []types.Link{{Title: "React", URL: "https://react.dev"}},
	}
	require.NoError(t, s.CacheResearch(ctx, tc))

	got, ok, err := s.CachedResearch(ctx, "React", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tc, got)

	*now = now.Add(2 * time.Hour)
	_, ok, err = s.CachedResearch(ctx, "React", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are misses")

	tc.Summary = "Refreshed."
	tc.Links = nil
	require.NoError(t, s.CacheResearch(ctx, tc))
	got, ok, err = s.CachedResearch(ctx, "React", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Refreshed.", got.Summary)
	assert.Equal(t, []types.Link{}, got.Links)
}
