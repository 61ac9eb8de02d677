// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the roadmap-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/logging"
	"github.com/pdiddy/roadmap-engine/internal/secrets"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Populated by PersistentPreRunE.
var (
	cfg    types.PipelineConfig
	logger = zap.NewNop()
)

// rootCmd is the base command for the roadmap-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "roadmap-engine",
	Short: "Generate learning roadmaps from free-text requests",
	Long: `roadmap-engine turns a learning request such as "I want to build a web app
with React and Next.js" into a structured, multi-technology learning roadmap.

The pipeline runs three stages: extract (technology tags and keyword
sub-tags), research (one web search per tag, in parallel), and synthesize
(a phased roadmap generated by a language model). Each stage is also
available as its own subcommand, and serve exposes the pipeline over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := logging.New(c.Log)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, l)
		if err != nil {
			return err
		}
		if names := s.Names(); len(names) > 0 {
			l.Debug("loaded secrets", zap.Strings("keys", names))
		}
		applySecrets(&c, s)

		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./roadmap-engine.yaml or ~/.config/roadmap-engine/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of API key files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("provider", "", "completion provider: anthropic, openai, or ollama")
	rootCmd.PersistentFlags().String("model", "", "model identifier")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding roadmaps.db")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("ai.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("roadmap-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "roadmap-engine"))
		}
	}

	viper.SetEnvPrefix("ROADMAP_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper(), types.Defaults())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that environment variables
// such as ROADMAP_ENGINE_AI_MODEL reach Unmarshal.
func setDefaults(v *viper.Viper, d types.PipelineConfig) {
	defaults := map[string]any{
		"ai.provider":                        string(d.AI.Provider),
		"ai.model":                           d.AI.Model,
		"ai.api_key":                         d.AI.APIKey,
		"ai.base_url":                        d.AI.BaseURL,
		"ai.temperature":                     d.AI.Temperature,
		"ai.max_tokens":                      d.AI.MaxTokens,
		"ai.max_retries":                     d.AI.MaxRetries,
		"search.timeout":                     d.Search.Timeout,
		"search.user_agent":                  d.Search.UserAgent,
		"search.api_key":                     d.Search.APIKey,
		"search.depth":                       string(d.Search.Depth),
		"search.max_results":                 d.Search.MaxResults,
		"search.query_suffix":                d.Search.QuerySuffix,
		"search.max_concurrency":             d.Search.MaxConcurrency,
		"search.cache_ttl":                   d.Search.CacheTTL,
		"extraction.keywords_dir":            d.Extraction.KeywordsDir,
		"extraction.min_relevance":           d.Extraction.MinRelevance,
		"synthesis.emit_chunks":              d.Synthesis.EmitChunks,
		"synthesis.max_links_per_technology": d.Synthesis.MaxLinksPerTechnology,
		"store.data_dir":                     d.Store.DataDir,
		"server.host":                        d.Server.Host,
		"server.port":                        d.Server.Port,
		"log.level":                          d.Log.Level,
		"log.format":                         d.Log.Format,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func loadConfig() (types.PipelineConfig, error) {
	c := types.Defaults()
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("reading configuration: %w", err)
	}
	return c, nil
}

// applySecrets fills API keys the configuration leaves empty.
func applySecrets(c *types.PipelineConfig, s secrets.Set) {
	if c.AI.APIKey == "" {
		switch c.AI.Provider {
		case types.ProviderOpenAI:
			c.AI.APIKey = s.Get(secrets.OpenAIAPIKey)
		case types.ProviderAnthropic, "":
			c.AI.APIKey = s.Get(secrets.AnthropicAPIKey)
		}
	}
	if c.Search.APIKey == "" {
		c.Search.APIKey = s.Get(secrets.TavilyAPIKey)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
