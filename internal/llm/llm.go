// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm defines the completion service contract used by tag
// extraction and roadmap synthesis, plus a langchaingo-backed implementation
// covering the Anthropic, OpenAI, and Ollama providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Completer generates text for a list of messages. Stream delivers text
// increments on the first channel; the error channel receives at most one
// error. Both channels are closed when generation ends. Cancelling ctx
// stops generation and releases the underlying request.
type Completer interface {
	Invoke(ctx context.Context, messages []Message) (string, error)
	Stream(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// ErrEmptyResponse is returned when the provider returns no choices.
var ErrEmptyResponse = errors.New("completion returned no content")

// BackoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var BackoffBase = time.Second

// InvokeWithRetry calls c.Invoke, retrying transport failures with
// exponential backoff (1s, 2s, 4s, ...). maxRetries <= 0 means no retries.
// Context cancellation is never retried.
func InvokeWithRetry(ctx context.Context, c Completer, messages []Message, maxRetries int) (string, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * BackoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := c.Invoke(ctx, messages)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	if maxRetries == 0 {
		return "", lastErr
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
