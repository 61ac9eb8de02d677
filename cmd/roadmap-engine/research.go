// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/roadmap-engine/internal/metrics"
	"github.com/pdiddy/roadmap-engine/internal/research"
	"github.com/pdiddy/roadmap-engine/internal/store"
)

var researchCmd = &cobra.Command{
	Use:   "research <tag...>",
	Short: "Search the web for each technology tag",
	Long: `Research runs one web search per tag in parallel and prints a summary
and reference links for each. A failed lookup is reported in place and
does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	var cache research.Cache
	if useCache, _ := cmd.Flags().GetBool("cache"); useCache {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		cache = s
	}

	contexts, err := newResearcher(cfg, metrics.New(), cache).Research(cmd.Context(), args)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, contexts)
	}
	printContexts(os.Stdout, contexts)
	return nil
}

func init() {
	researchCmd.Flags().Bool("json", false, "output results as JSON")
	researchCmd.Flags().Bool("cache", false, "read and fill the research cache in the data directory")
	rootCmd.AddCommand(researchCmd)
}
