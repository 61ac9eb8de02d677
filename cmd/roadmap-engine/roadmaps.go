// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadmap-engine/internal/store"
)

var roadmapsCmd = &cobra.Command{
	Use:   "roadmaps",
	Short: "Manage saved roadmaps (list, show, export, delete)",
	Long: `Roadmaps manages the roadmaps saved by generate --save and by the HTTP
server. They live in a SQLite database in the data directory.`,
}

var roadmapsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved roadmaps, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRoadmapsList,
}

func runRoadmapsList(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.List(cmd.Context(), listOptsFromFlags(cmd))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, list)
	}
	if len(list) == 0 {
		fmt.Println("No roadmaps found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-30s  %s\n", "ID", "Title", "Tags", "Created")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for _, r := range list {
		fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-30s  %s\n",
			r.ID, truncate(r.Title, 30), truncate(strings.Join(r.Tags, ", "), 30),
			r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(os.Stdout, "\n%d roadmaps\n", len(list))
	return nil
}

var roadmapsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved roadmap",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoadmapsShow,
}

func runRoadmapsShow(cmd *cobra.Command, args []string) error {
	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "":
		printRoadmap(os.Stdout, rec.Roadmap)
		return nil
	case "json":
		return writeJSON(os.Stdout, rec)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}

var roadmapsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved roadmaps to YAML or JSON",
	Long: `Export writes every saved roadmap (or those matching --tag) to stdout or
to the file named by --output.`,
	Args: cobra.NoArgs,
	RunE: runRoadmapsExport,
}

func runRoadmapsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	opts := listOptsFromFlags(cmd)
	switch format {
	case "yaml", "":
		err = s.ExportYAML(cmd.Context(), w, opts)
	case "json":
		err = s.ExportJSON(cmd.Context(), w, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
	return nil
}

var roadmapsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved roadmap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func listOptsFromFlags(cmd *cobra.Command) store.ListOptions {
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")
	return store.ListOptions{Tag: tag, Limit: limit}
}

func init() {
	roadmapsListCmd.Flags().String("tag", "", "filter by extracted tag")
	roadmapsListCmd.Flags().Int("limit", 0, "maximum roadmaps (0 = default)")
	roadmapsListCmd.Flags().Bool("json", false, "output as JSON")

	roadmapsShowCmd.Flags().String("format", "text", "output format: text, json, or yaml")

	roadmapsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	roadmapsExportCmd.Flags().String("tag", "", "filter by extracted tag for partial export")
	roadmapsExportCmd.Flags().String("output", "", "write to this file instead of stdout")

	roadmapsCmd.AddCommand(roadmapsListCmd)
	roadmapsCmd.AddCommand(roadmapsShowCmd)
	roadmapsCmd.AddCommand(roadmapsExportCmd)
	roadmapsCmd.AddCommand(roadmapsDeleteCmd)

	rootCmd.AddCommand(roadmapsCmd)
}
