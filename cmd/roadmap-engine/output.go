// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRoadmap renders doc as an indented outline.
func printRoadmap(w io.Writer, doc *types.RoadmapDocument) {
	fmt.Fprintln(w, doc.Title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(doc.Title))))
	for _, tech := range doc.Technologies {
		fmt.Fprintf(w, "\n%s\n", tech.Name)
		if tech.Summary != "" {
			fmt.Fprintf(w, "  %s\n", tech.Summary)
		}
		for _, phase := range tech.Phases {
			fmt.Fprintf(w, "  %d. %s\n", phase.Order, phase.PhaseName)
			for _, step := range phase.Steps {
				fmt.Fprintf(w, "     - %s (%s)\n", step.Topic, step.EstimatedTime)
				for _, l := range step.SourceLinks {
					fmt.Fprintf(w, "         %s <%s>\n", l.Title, l.URL)
				}
			}
		}
	}
}

func printContexts(w io.Writer, contexts []types.TechnologyContext) {
	for _, tc := range contexts {
		fmt.Fprintf(w, "%s\n  %s\n", tc.Name, tc.Summary)
		for _, l := range tc.Links {
			fmt.Fprintf(w, "  - %s <%s>\n", l.Title, l.URL)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
