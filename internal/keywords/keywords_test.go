// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"React", "react"},
		{"Next.js", "nextjs"},
		{"Vue.js", "vuejs"},
		{"Ruby on Rails", "rubyonrails"},
		{"  TypeScript ", "typescript"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuiltinSubTags(t *testing.T) {
	l := Builtin()

	got, err := l.SubTags("Next.js", 4)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, st := range got {
		assert.GreaterOrEqual(t, st.RelevanceLevel, 4, st.Word)
		assert.Equal(t, "Next.js", st.Technology)
	}

	ts, err := l.SubTags("TypeScript", 4)
	require.NoError(t, err)
	assert.Len(t, ts, 4)

	names, err := l.Available()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"react", "nextjs", "typescript"}, names)
}

func TestMissingFileIsNotAnError(t *testing.T) {
	l := New(fstest.MapFS{})
	got, err := l.SubTags("UnknownFrameworkXYZ", 4)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestKeyPrecedence(t *testing.T) {
	fsys := fstest.MapFS{
		"vuejs.json": {Data: []byte(`{
			"keywords": [{"word": "fallback", "relevance_level": 5}],
			"vuejs_keywords_with_details": [{"word": "ref", "description": "reactive value", "relevance_level": 5}]
		}`)},
		"go.json": {Data: []byte(`{
			"technology": "Go",
			"keywords": [{"word": "goroutine", "relevance_level": 5}, {"word": "cgo", "relevance_level": 1}]
		}`)},
	}
	l := New(fsys)

	vue, err := l.SubTags("Vue.js", 4)
	require.NoError(t, err)
	assert.Equal(t, []types.SubTag{{Word: "ref", Description: "reactive value", RelevanceLevel: 5, Technology: "Vue.js"}}, vue)

	goKws, err := l.SubTags("Go", 4)
	require.NoError(t, err)
	require.Len(t, goKws, 1)
	assert.Equal(t, "goroutine", goKws[0].Word)
}

func TestYAMLFile(t *testing.T) {
	fsys := fstest.MapFS{
		"rust.yml": {Data: []byte("keywords_with_details:\n  - word: ownership\n    description: memory model\n    relevance_level: 5\n  - word: macros\n    relevance_level: 3\n")},
	}
	kws, err := New(fsys).Keywords("Rust")
	require.NoError(t, err)
	assert.Equal(t, []Keyword{
		{Word: "ownership", Description: "memory model", RelevanceLevel: 5},
		{Word: "macros", RelevanceLevel: 3},
	}, kws)
}

func TestMalformedFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.json":  {Data: []byte(`{"keywords": [`)},
		"empty.json":   {Data: []byte(`{"other": []}`)},
		"badtype.json": {Data: []byte(`{"keywords": "not a list"}`)},
	}
	l := New(fsys)

	_, err := l.Keywords("broken")
	assert.ErrorContains(t, err, "broken.json")

	_, err = l.Keywords("empty")
	assert.ErrorIs(t, err, ErrNoKeywords)

	_, err = l.Keywords("badtype")
	assert.ErrorContains(t, err, "key keywords")
}
