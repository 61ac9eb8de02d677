// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/synth"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// EventType is the wire type of a progress event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one progress notification. Data holds a Delta after a stage
// completes, a SnapshotData or ChunkData during synthesis, the final State
// on complete, and ErrorData on error.
type Event struct {
	Type    EventType `json:"type"`
	Agent   Stage     `json:"agent"`
	Data    any       `json:"data"`
	IsFinal bool      `json:"is_final"`
}

// SnapshotData carries a partial roadmap parsed mid-generation.
type SnapshotData struct {
	Roadmap *types.RoadmapDocument `json:"roadmap"`
	Partial bool                   `json:"partial"`
}

// ChunkData carries a raw text increment.
type ChunkData struct {
	Chunk string `json:"chunk"`
}

// ErrorData carries a failure diagnostic.
type ErrorData struct {
	Error string `json:"error"`
}

// errNoResult is reported when a synthesis stream ends without a terminal event.
var errNoResult = errors.New("synthesis stream ended without a result")

// EncodeNDJSON writes ev as one JSON line.
func EncodeNDJSON(w io.Writer, ev Event) error {
	return json.NewEncoder(w).Encode(ev)
}

// Stream executes all three stages and reports progress. The channel
// carries a progress event after extraction and research, progress events
// during synthesis, and ends with one complete or error event. Cancelling
// ctx stops every stage and closes the channel without a terminal event.
func (p *Pipeline) Stream(ctx context.Context, request string) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		send := func(ev Event) bool {
			select {
			case out <- ev:
				p.metrics.RecordStreamEvent(string(ev.Type))
				return true
			case <-ctx.Done():
				return false
			}
		}
		failed := func(s State, err error) {
			stage := s.CurrentStage
			s, _ = p.fail(s, err)
			if ctx.Err() == nil {
				send(Event{Type: EventError, Agent: stage, Data: ErrorData{Error: s.Error}, IsFinal: true})
			}
		}

		s := State{RequestText: request}.enter(StageExtracting)
		d, err := p.extract(ctx, s)
		if err != nil {
			failed(s, err)
			return
		}
		s = s.merge(d)
		if !send(Event{Type: EventProgress, Agent: StageExtracting, Data: d}) {
			return
		}

		s = s.enter(StageResearching)
		d, err = p.research(ctx, s)
		if err != nil {
			failed(s, err)
			return
		}
		s = s.merge(d)
		if !send(Event{Type: EventProgress, Agent: StageResearching, Data: d}) {
			return
		}

		s = s.enter(StageSynthesizing)
		start := time.Now()
		doc, err := p.forwardSynthesis(ctx, s, send)
		p.metrics.ObserveStage(string(StageSynthesizing), err, time.Since(start))
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			failed(s, err)
			return
		}
		s = p.complete(ctx, s.merge(Delta{Roadmap: doc}))
		send(Event{Type: EventComplete, Agent: StageSynthesizing, Data: s, IsFinal: true})
	}()

	return out
}

// forwardSynthesis relays synthesizer snapshots and returns the final document.
func (p *Pipeline) forwardSynthesis(ctx context.Context, s State, send func(Event) bool) (*types.RoadmapDocument, error) {
	var (
		doc *types.RoadmapDocument
		err error
	)
	for ev := range p.synthesizer.SynthesizeStream(ctx, inputFor(s)) {
		switch ev.Type {
		case synth.EventChunk:
			if p.emitChunks && !send(Event{Type: EventProgress, Agent: StageSynthesizing, Data: ChunkData{Chunk: ev.Text}}) {
				return nil, ctx.Err()
			}
		case synth.EventProgress:
			p.log.Debug("roadmap snapshot", zap.Int("technologies", len(ev.Roadmap.Technologies)))
			if !send(Event{Type: EventProgress, Agent: StageSynthesizing, Data: SnapshotData{Roadmap: ev.Roadmap, Partial: true}}) {
				return nil, ctx.Err()
			}
		case synth.EventComplete:
			doc = ev.Roadmap
		case synth.EventError:
			err = ev.Err
		}
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errNoResult
	}
	return doc, nil
}
