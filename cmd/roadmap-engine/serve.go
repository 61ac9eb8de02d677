// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over HTTP",
	Long: `Serve exposes the pipeline as a JSON API:

  POST /api/v1/analyze          extract tags and research them
  POST /api/v1/roadmap          synthesize from an analyze response
  POST /api/v1/generate         run the full pipeline
  POST /api/v1/generate/stream  run the full pipeline as NDJSON progress events
  GET  /api/v1/roadmaps         list saved roadmaps
  GET  /api/v1/roadmaps/:id     read a saved roadmap
  GET  /health, /metrics

Completed roadmaps are saved to the data directory unless --no-save is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	noSave, _ := cmd.Flags().GetBool("no-save")
	a, err := newApp(cfg, !noSave)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []server.Option{server.WithLogger(logger.Named("http"))}
	if a.store != nil {
		opts = append(opts, server.WithRoadmaps(a.store))
	}
	srv, err := server.New(a.pipeline, cfg.Server, opts...)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().Bool("no-save", false, "do not persist generated roadmaps")
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}
