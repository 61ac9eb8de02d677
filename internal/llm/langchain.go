// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"slices"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// streamBuffer is the capacity of the increment channel returned by Stream.
const streamBuffer = 64

// LangChain adapts a langchaingo model to Completer.
type LangChain struct {
	model llms.Model
	opts  []llms.CallOption
}

// NewLangChain wraps model. opts are applied to every call.
func NewLangChain(model llms.Model, opts ...llms.CallOption) *LangChain {
	return &LangChain{model: model, opts: opts}
}

// New builds a Completer for the configured provider.
func New(cfg types.AIConfig) (*LangChain, error) {
	var (
		model llms.Model
		err   error
	)

	switch cfg.Provider {
	case types.ProviderAnthropic, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey), anthropic.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err = anthropic.New(opts...)
	case types.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case types.ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q: use anthropic, openai, or ollama", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Provider, err)
	}

	var callOpts []llms.CallOption
	if cfg.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(cfg.MaxTokens))
	}
	return NewLangChain(model, callOpts...), nil
}

// Invoke generates a full completion.
func (c *LangChain) Invoke(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.model.GenerateContent(ctx, toContent(messages), c.opts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

// Stream generates a completion, delivering increments as they arrive.
func (c *LangChain) Stream(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	out := make(chan string, streamBuffer)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		opts := append(slices.Clone(c.opts), llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			select {
			case out <- string(chunk):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))

		if _, err := c.model.GenerateContent(ctx, toContent(messages), opts...); err != nil {
			if ctx.Err() != nil {
				errc <- ctx.Err()
				return
			}
			errc <- fmt.Errorf("streaming content: %w", err)
		}
	}()

	return out, errc
}

func toContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		out = append(out, llms.TextParts(chatType(m.Role), m.Content))
	}
	return out
}

func chatType(r Role) llms.ChatMessageType {
	switch r {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
