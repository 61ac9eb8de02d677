// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "roadmap-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Provider identifies the completion backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the completion backend: anthropic, openai, or ollama.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API. Ollama ignores it.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (required for a remote Ollama).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Temperature is the sampling temperature passed to the model.
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the generated length of one completion.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SearchDepth is the Tavily search depth.
type SearchDepth string

const (
	DepthBasic    SearchDepth = "basic"
	DepthAdvanced SearchDepth = "advanced"
)

// SearchConfig holds settings for the research stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the Tavily API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Depth is the search depth requested per query (default advanced).
	Depth SearchDepth `json:"depth" yaml:"depth" mapstructure:"depth"`

	// MaxResults is the maximum number of results per query (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// QuerySuffix is appended to every tag to steer results toward
	// community and documentation sources.
	QuerySuffix string `json:"query_suffix" yaml:"query_suffix" mapstructure:"query_suffix"`

	// MaxConcurrency bounds concurrent lookups (0 = one per tag).
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency" mapstructure:"max_concurrency"`

	// CacheTTL is how long a cached research context stays valid (0 disables the cache).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// ExtractionConfig holds settings for the tag extraction stage.
type ExtractionConfig struct {
	// KeywordsDir is a directory of keyword lookup files. Empty uses the
	// built-in set.
	KeywordsDir string `json:"keywords_dir" yaml:"keywords_dir" mapstructure:"keywords_dir"`

	// MinRelevance is the lowest relevance level kept as a sub-tag (default 4).
	MinRelevance int `json:"min_relevance" yaml:"min_relevance" mapstructure:"min_relevance"`
}

// SynthesisConfig holds settings for the roadmap synthesis stage.
type SynthesisConfig struct {
	// EmitChunks forwards raw text increments as progress events.
	EmitChunks bool `json:"emit_chunks" yaml:"emit_chunks" mapstructure:"emit_chunks"`

	// MaxLinksPerTechnology caps links serialized into the prompt (default 5).
	MaxLinksPerTechnology int `json:"max_links_per_technology" yaml:"max_links_per_technology" mapstructure:"max_links_per_technology"`
}

// StoreConfig holds settings for the roadmap store.
type StoreConfig struct {
	// DataDir contains the SQLite database (roadmaps.db).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Synthesis  SynthesisConfig  `json:"synthesis" yaml:"synthesis" mapstructure:"synthesis"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultQuerySuffix targets Japanese community sites and official docs.
const DefaultQuerySuffix = "Qiita Zenn 公式ドキュメント"

// Defaults returns a PipelineConfig with every field set to its default.
func Defaults() PipelineConfig {
	return PipelineConfig{
		AI: AIConfig{
			Provider:    ProviderAnthropic,
			Model:       "claude-sonnet-4-5-20250929",
			Temperature: 0.3,
			MaxTokens:   8192,
			MaxRetries:  3,
		},
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "roadmap-engine/0.1",
			},
			Depth:       DepthAdvanced,
			MaxResults:  5,
			QuerySuffix: DefaultQuerySuffix,
			CacheTTL:    24 * time.Hour,
		},
		Extraction: ExtractionConfig{
			MinRelevance: 4,
		},
		Synthesis: SynthesisConfig{
			MaxLinksPerTechnology: 5,
		},
		Store: StoreConfig{
			DataDir: "data",
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
