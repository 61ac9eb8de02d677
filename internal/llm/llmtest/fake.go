// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted Completer for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/pdiddy/roadmap-engine/internal/llm"
)

// Fake answers Invoke and Stream from scripted data. Respond, when set,
// takes precedence over Responses and lets a test route by prompt content.
type Fake struct {
	mu sync.Mutex

	// Responses are returned by successive Invoke calls; the last one repeats.
	Responses []string

	// Respond computes the Invoke response for the given messages.
	Respond func(messages []llm.Message) (string, error)

	// Err is returned by every Invoke call when set.
	Err error

	// Chunks are emitted in order by Stream.
	Chunks []string

	// StreamErr is delivered after Chunks when set.
	StreamErr error

	// Block makes Stream wait for ctx cancellation after emitting Chunks.
	Block bool

	calls   [][]llm.Message
	streams int
}

// Invoke returns the next scripted response.
func (f *Fake) Invoke(ctx context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	idx := len(f.calls)
	f.calls = append(f.calls, messages)
	respond, err := f.Respond, f.Err
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err != nil {
		return "", err
	}
	if respond != nil {
		return respond(messages)
	}
	if len(f.Responses) == 0 {
		return "", llm.ErrEmptyResponse
	}
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}
	return f.Responses[idx], nil
}

// Stream emits Chunks, then StreamErr, honoring ctx on every send.
func (f *Fake) Stream(ctx context.Context, messages []llm.Message) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.streams++
	f.mu.Unlock()

	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, c := range f.Chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if f.Block {
			<-ctx.Done()
			errc <- ctx.Err()
			return
		}
		if f.StreamErr != nil {
			errc <- f.StreamErr
		}
	}()
	return out, errc
}

// Calls returns the number of Invoke and Stream calls made.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Streams returns the number of Stream calls made.
func (f *Fake) Streams() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams
}

// LastMessages returns the messages of the most recent call.
func (f *Fake) LastMessages() []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}
