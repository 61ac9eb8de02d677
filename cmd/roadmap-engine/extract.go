// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/roadmap-engine/internal/llm"
)

var extractCmd = &cobra.Command{
	Use:   "extract <request...>",
	Short: "Extract technology tags and keyword sub-tags from a request",
	Long: `Extract sends the request to the completion provider, which names the
technologies it involves. Each tag is then matched against the keyword
lookup files to attach high-relevance sub-tags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	completer, err := llm.New(cfg.AI)
	if err != nil {
		return err
	}
	res, err := newExtractor(cfg, completer).Extract(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, res)
	}

	fmt.Printf("Tags: %s\n", strings.Join(res.Tags, ", "))
	if res.Reasoning != "" {
		fmt.Printf("Reasoning: %s\n", res.Reasoning)
	}
	if len(res.SubTags) > 0 {
		fmt.Println("\nSub-tags:")
		for _, st := range res.SubTags {
			fmt.Printf("  %-12s  %-20s  %d  %s\n", st.Technology, st.Word, st.RelevanceLevel, truncate(st.Description, 50))
		}
	}
	return nil
}

func init() {
	extractCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(extractCmd)
}
