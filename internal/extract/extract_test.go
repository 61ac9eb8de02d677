// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/roadmap-engine/internal/keywords"
	"github.com/pdiddy/roadmap-engine/internal/llm"
	"github.com/pdiddy/roadmap-engine/internal/llm/llmtest"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

func TestMain(m *testing.M) {
	llm.BackoffBase = time.Millisecond
	os.Exit(m.Run())
}

func TestExtractResponseEncodings(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"bare JSON", `{"tags": ["React", "Next.js"], "reasoning": "named"}`},
		{"fenced", "Here you go:\n```json\n{\"tags\": [\"React\", \"Next.js\"], \"reasoning\": \"named\"}\n```"},
		{"embedded in prose", `Sure! {"tags": ["React", "Next.js"], "reasoning": "named"} Hope that helps.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &llmtest.Fake{Responses: []string{tt.response}}
			got, err := New(fake, nil).Extract(context.Background(), "I want to learn React and Next.js")
			require.NoError(t, err)
			assert.Equal(t, []string{"React", "Next.js"}, got.Tags)
			assert.Equal(t, "named", got.Reasoning)
			assert.Equal(t, 1, fake.Calls())
		})
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		fake := &llmtest.Fake{Responses: []string{`{"tags":["Go"]}`}}
		_, err := New(fake, nil).Extract(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Equal(t, 0, fake.Calls(), "completion service must not be called")
	}
}

func TestExtractParseFailureIsNotRetried(t *testing.T) {
	fake := &llmtest.Fake{Responses: []string{"I cannot help with that."}}
	_, err := New(fake, nil).Extract(context.Background(), "learn Go")
	assert.ErrorIs(t, err, ErrParseFailed)
	assert.Equal(t, "failed to extract tags: no JSON object found in response", err.Error())
	assert.Equal(t, 1, fake.Calls())
}

func TestExtractNoTags(t *testing.T) {
	for _, resp := range []string{`{"tags": []}`, `{"tags": ["", "  "]}`, `{"reasoning": "nothing technical"}`} {
		_, err := New(&llmtest.Fake{Responses: []string{resp}}, nil).Extract(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrNoTags, resp)
		assert.NotErrorIs(t, err, ErrParseFailed)
	}
}

func TestExtractDedupePreservesOrder(t *testing.T) {
	fake := &llmtest.Fake{Responses: []string{`{"tags": ["TypeScript", " React ", "TypeScript", "Next.js", "React"]}`}}
	got, err := New(fake, nil).Extract(context.Background(), "web dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"TypeScript", "React", "Next.js"}, got.Tags)
}

func TestExtractRetriesTransportErrors(t *testing.T) {
	calls := 0
	fake := &llmtest.Fake{Respond: func([]llm.Message) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return `{"tags": ["Go"]}`, nil
	}}
	got, err := New(fake, nil, WithMaxRetries(3)).Extract(context.Background(), "learn Go")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.Tags)
	assert.Equal(t, 3, calls)

	failing := &llmtest.Fake{Err: errors.New("connection reset")}
	_, err = New(failing, nil, WithMaxRetries(2)).Extract(context.Background(), "learn Go")
	assert.ErrorContains(t, err, "after 2 retries")
	assert.Equal(t, 3, failing.Calls())
}

func TestExtractMessages(t *testing.T) {
	fake := &llmtest.Fake{Responses: []string{`{"tags": ["Go"]}`}}
	_, err := New(fake, nil).Extract(context.Background(), "  goroutines please ")
	require.NoError(t, err)

	msgs := fake.LastMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)
	assert.True(t, strings.Contains(msgs[1].Content, "goroutines please"))
}

func TestExtractSubTags(t *testing.T) {
	fake := &llmtest.Fake{Responses: []string{`{"tags": ["React", "Next.js", "UnknownFrameworkXYZ"]}`}}
	got, err := New(fake, keywords.Builtin()).Extract(context.Background(), "React and Next.js")
	require.NoError(t, err)

	byTech := map[string]int{}
	for _, st := range got.SubTags {
		assert.GreaterOrEqual(t, st.RelevanceLevel, 4)
		byTech[st.Technology]++
	}
	assert.Positive(t, byTech["React"])
	assert.Positive(t, byTech["Next.js"])
	assert.Zero(t, byTech["UnknownFrameworkXYZ"])
}

func TestExtractMinRelevance(t *testing.T) {
	fsys := fstest.MapFS{"go.json": {Data: []byte(`{"keywords": [
		{"word": "goroutine", "relevance_level": 5},
		{"word": "channels", "relevance_level": 3},
		{"word": "cgo", "relevance_level": 1}
	]}`)}}
	fake := &llmtest.Fake{Responses: []string{`{"tags": ["Go"]}`}}

	got, err := New(fake, keywords.New(fsys), WithMinRelevance(3)).Extract(context.Background(), "Go")
	require.NoError(t, err)
	assert.Equal(t, []types.SubTag{
		{Word: "goroutine", RelevanceLevel: 5, Technology: "Go"},
		{Word: "channels", RelevanceLevel: 3, Technology: "Go"},
	}, got.SubTags)
}

func TestExtractMalformedKeywordFileIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fsys := fstest.MapFS{"go.json": {Data: []byte(`{"keywords": [`)}}
	fake := &llmtest.Fake{Responses: []string{`{"tags": ["Go"]}`}}

	got, err := New(fake, keywords.New(fsys), WithLogger(zap.New(core))).Extract(context.Background(), "Go")
	require.NoError(t, err)
	assert.Empty(t, got.SubTags)
	assert.Equal(t, 1, logs.FilterMessage("skipping keyword file").Len())
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&llmtest.Fake{Responses: []string{`{"tags":["Go"]}`}}, nil).Extract(ctx, "Go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{}},
		{[]string{"a", "b", "a"}, []string{"a", "b"}},
		{[]string{" a", "a ", ""}, []string{"a"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dedupe(tt.in))
	}
}
