// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pdiddy/roadmap-engine/internal/llmjson"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// Snapshotter accumulates streamed text and reports each new parsable
// roadmap it contains.
//
// On every Feed the whole buffer is rescanned: first the leading balanced
// {...} span, then the entire buffer, then the first fenced block. A
// snapshot is reported only when it differs structurally from the last
// reported one and has at least as many technologies.
type Snapshotter struct {
	buf  strings.Builder
	last *types.RoadmapDocument
}

// Feed appends text and returns a new snapshot when one is available.
func (s *Snapshotter) Feed(text string) (*types.RoadmapDocument, bool) {
	s.buf.WriteString(text)
	doc, ok := parsePartial(s.buf.String())
	if !ok {
		return nil, false
	}
	if s.last != nil {
		if len(doc.Technologies) < len(s.last.Technologies) {
			return nil, false
		}
		if cmp.Equal(*s.last, *doc, cmpopts.EquateEmpty()) {
			return nil, false
		}
	}
	s.last = doc
	return doc, true
}

// Buffer returns everything fed so far.
func (s *Snapshotter) Buffer() string { return s.buf.String() }

// Last returns the most recently reported snapshot, or nil.
func (s *Snapshotter) Last() *types.RoadmapDocument { return s.last }

// Final parses the complete buffer with the full recovery order.
func (s *Snapshotter) Final() (*types.RoadmapDocument, error) {
	return ParseRoadmap(s.buf.String())
}

func parsePartial(buf string) (*types.RoadmapDocument, bool) {
	if span, ok := llmjson.ScanObject(buf); ok {
		if doc, ok := llmjson.DecodeObject[types.RoadmapDocument](span); ok {
			return &doc, true
		}
	}
	if doc, ok := llmjson.DecodeObject[types.RoadmapDocument](buf); ok {
		return &doc, true
	}
	if body, ok := llmjson.FencedBlock(buf); ok {
		if doc, ok := llmjson.DecodeObject[types.RoadmapDocument](body); ok {
			return &doc, true
		}
	}
	return nil, false
}
