// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the roadmap pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/pipeline"
	"github.com/pdiddy/roadmap-engine/internal/store"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// Pipeline is the orchestrator surface the server drives.
// *pipeline.Pipeline implements it.
type Pipeline interface {
	Run(ctx context.Context, request string) (pipeline.State, error)
	Analyze(ctx context.Context, request string) (pipeline.State, error)
	SynthesizeFrom(ctx context.Context, s pipeline.State) (pipeline.State, error)
	Stream(ctx context.Context, request string) <-chan pipeline.Event
}

// Roadmaps reads stored roadmaps. *store.Store implements it.
type Roadmaps interface {
	List(ctx context.Context, opts store.ListOptions) ([]store.Summary, error)
	Get(ctx context.Context, id string) (store.Record, error)
}

// Server serves the pipeline API.
type Server struct {
	echo     *echo.Echo
	pipeline Pipeline
	roadmaps Roadmaps
	log      *zap.Logger
	cfg      types.ServerConfig
}

// Option configures a Server.
type Option func(*Server)

// WithRoadmaps enables the stored roadmap routes.
func WithRoadmaps(r Roadmaps) Option { return func(s *Server) { s.roadmaps = r } }

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a Server with its routes registered.
func New(p Pipeline, cfg types.ServerConfig, opts ...Option) (*Server, error) {
	if p == nil {
		return nil, errors.New("pipeline cannot be nil")
	}
	s := &Server{pipeline: p, cfg: cfg, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.logRequests)
	s.echo = e

	s.registerRoutes()
	return s, nil
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Info("http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyze)
	v1.POST("/roadmap", s.handleRoadmap)
	v1.POST("/generate", s.handleGenerate)
	v1.POST("/generate/stream", s.handleGenerateStream)
	if s.roadmaps != nil {
		v1.GET("/roadmaps", s.handleListRoadmaps)
		v1.GET("/roadmaps/:id", s.handleGetRoadmap)
	}
}

// ServeHTTP lets the server be mounted in tests and other muxes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.log.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
