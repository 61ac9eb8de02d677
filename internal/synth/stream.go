// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// EventType discriminates streamed synthesis events.
type EventType string

const (
	EventChunk    EventType = "chunk"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one item of a synthesis stream. Text is set on chunk events,
// Roadmap on progress and complete events, Err on error events.
type Event struct {
	Type     EventType
	Text     string
	Roadmap  *types.RoadmapDocument
	Complete bool
	Err      error
}

// SynthesizeStream generates the roadmap incrementally. Chunk and progress
// events precede exactly one terminal complete or error event, after which
// the channel is closed. A consumer that stops reading must cancel ctx;
// cancellation releases the upstream generation call and closes the channel
// without a terminal event.
func (s *Synthesizer) SynthesizeStream(ctx context.Context, in Input) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		send := func(ev Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if err := in.validate(); err != nil {
			send(Event{Type: EventError, Err: err})
			return
		}
		messages, err := BuildMessages(in, s.maxLinks)
		if err != nil {
			send(Event{Type: EventError, Err: fmt.Errorf("rendering prompt: %w", err)})
			return
		}

		genCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		s.log.Info("streaming roadmap", zap.Strings("tags", in.Tags))
		chunks, errc := s.completer.Stream(genCtx, messages)

		var snap Snapshotter
		for text := range chunks {
			if text == "" {
				continue
			}
			if !send(Event{Type: EventChunk, Text: text}) {
				return
			}
			if doc, ok := snap.Feed(text); ok {
				s.log.Debug("roadmap snapshot", zap.Int("technologies", len(doc.Technologies)))
				if !send(Event{Type: EventProgress, Roadmap: doc}) {
					return
				}
			}
		}

		if err := <-errc; err != nil {
			if ctx.Err() != nil {
				return
			}
			send(Event{Type: EventError, Err: fmt.Errorf("streaming completion: %w", err)})
			return
		}

		doc, err := snap.Final()
		if err != nil {
			s.log.Warn("unparsable streamed roadmap", zap.Int("buffer_len", len(snap.Buffer())))
			send(Event{Type: EventError, Err: err})
			return
		}
		attachMetadata(doc, in)
		s.log.Info("streamed roadmap", zap.Int("technologies", len(doc.Technologies)))
		send(Event{Type: EventComplete, Roadmap: doc, Complete: true})
	}()

	return out
}
