// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadmap-engine/internal/pipeline"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [request...]",
	Short: "Run the full pipeline and print a learning roadmap",
	Long: `Generate extracts tags from the request, researches each one, and
synthesizes a phased learning roadmap.

With --stream, progress is reported as each stage finishes and partial
roadmaps are shown while the model is still writing. Combined with --json,
the stream is written as newline-delimited JSON events, one per line, in the
same format the HTTP stream endpoint uses.

With --diagnosis, the request is built from a YAML diagnosis file
(domain, goal, answers) instead of the arguments.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")
	stream, _ := cmd.Flags().GetBool("stream")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	request, err := requestText(cmd, args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, save)
	if err != nil {
		return err
	}
	defer a.Close()

	if stream {
		return streamGenerate(cmd, a.pipeline, request, jsonOutput)
	}

	st, err := a.pipeline.Run(cmd.Context(), request)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(os.Stdout, st)
	}
	printRoadmap(os.Stdout, st.Roadmap)
	if st.RoadmapID != "" {
		fmt.Fprintf(os.Stderr, "\nSaved roadmap %s\n", st.RoadmapID)
	}
	return nil
}

func requestText(cmd *cobra.Command, args []string) (string, error) {
	path, _ := cmd.Flags().GetString("diagnosis")
	if path == "" {
		if len(args) == 0 {
			return "", errors.New("a request or --diagnosis is required")
		}
		return strings.Join(args, " "), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var d types.DiagnosisContext
	if err := yaml.Unmarshal(data, &d); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	text := d.RequestText()
	if text == "" {
		return "", fmt.Errorf("%s: diagnosis is empty", path)
	}
	return text, nil
}

func streamGenerate(cmd *cobra.Command, p *pipeline.Pipeline, request string, jsonOutput bool) error {
	var final pipeline.State
	for ev := range p.Stream(cmd.Context(), request) {
		if jsonOutput {
			if err := pipeline.EncodeNDJSON(os.Stdout, ev); err != nil {
				return err
			}
		} else {
			reportProgress(ev)
		}

		switch ev.Type {
		case pipeline.EventError:
			if data, ok := ev.Data.(pipeline.ErrorData); ok {
				return fmt.Errorf("%s: %s", ev.Agent, data.Error)
			}
			return fmt.Errorf("%s failed", ev.Agent)
		case pipeline.EventComplete:
			final, _ = ev.Data.(pipeline.State)
		}
	}

	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if final.Roadmap == nil {
		return errors.New("stream ended without a roadmap")
	}
	if !jsonOutput {
		fmt.Println()
		printRoadmap(os.Stdout, final.Roadmap)
		if final.RoadmapID != "" {
			fmt.Fprintf(os.Stderr, "\nSaved roadmap %s\n", final.RoadmapID)
		}
	}
	return nil
}

// reportProgress writes a one-line summary of ev to stderr.
func reportProgress(ev pipeline.Event) {
	switch data := ev.Data.(type) {
	case pipeline.Delta:
		switch ev.Agent {
		case pipeline.StageExtracting:
			fmt.Fprintf(os.Stderr, "extracted tags: %s (%d sub-tags)\n", strings.Join(data.Tags, ", "), len(data.SubTags))
		case pipeline.StageResearching:
			fmt.Fprintf(os.Stderr, "researched %d technologies\n", len(data.ResearchContext))
		}
	case pipeline.SnapshotData:
		names := make([]string, 0, len(data.Roadmap.Technologies))
		for _, t := range data.Roadmap.Technologies {
			names = append(names, t.Name)
		}
		fmt.Fprintf(os.Stderr, "synthesizing: %s\n", strings.Join(names, ", "))
	case pipeline.ChunkData:
		fmt.Fprint(os.Stderr, data.Chunk)
	}
}

func init() {
	generateCmd.Flags().Bool("stream", false, "report progress while generating")
	generateCmd.Flags().Bool("save", false, "save the roadmap and cache research in the data directory")
	generateCmd.Flags().Bool("json", false, "output JSON (NDJSON events with --stream)")
	generateCmd.Flags().String("diagnosis", "", "YAML diagnosis file to build the request from")
	rootCmd.AddCommand(generateCmd)
}
