// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/roadmap-engine/internal/extract"
	"github.com/pdiddy/roadmap-engine/internal/pipeline"
	"github.com/pdiddy/roadmap-engine/internal/research"
	"github.com/pdiddy/roadmap-engine/internal/store"
	"github.com/pdiddy/roadmap-engine/internal/synth"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	UserInput string `json:"user_input"`
}

// AnalyzeResponse is the body returned by /analyze. It can be posted to
// /roadmap unchanged.
type AnalyzeResponse struct {
	UserInput string                    `json:"user_input"`
	Tags      []string                  `json:"tags"`
	SubTags   []types.SubTag            `json:"sub_tags"`
	Context   []types.TechnologyContext `json:"context"`
}

// RoadmapRequest is the body of POST /api/v1/roadmap.
type RoadmapRequest struct {
	UserInput string                    `json:"user_input"`
	Tags      []string                  `json:"tags"`
	SubTags   []types.SubTag            `json:"sub_tags"`
	Context   []types.TechnologyContext `json:"context"`
}

// RoadmapResponse is the body returned by /roadmap.
type RoadmapResponse struct {
	Roadmap   *types.RoadmapDocument `json:"roadmap"`
	RoadmapID string                 `json:"roadmap_id,omitempty"`
}

// GenerateRequest is the body of POST /api/v1/generate and /generate/stream.
// Diagnosis is used when Request is empty.
type GenerateRequest struct {
	Request   string                  `json:"request"`
	Diagnosis *types.DiagnosisContext `json:"diagnosis,omitempty"`
}

func (r GenerateRequest) text() string {
	if s := strings.TrimSpace(r.Request); s != "" {
		return s
	}
	if r.Diagnosis != nil {
		return r.Diagnosis.RequestText()
	}
	return ""
}

// GenerateResponse is the body returned by /generate.
type GenerateResponse struct {
	Success       bool                      `json:"success"`
	Roadmap       *types.RoadmapDocument    `json:"roadmap,omitempty"`
	RoadmapID     string                    `json:"roadmap_id,omitempty"`
	ExtractedTags []string                  `json:"extracted_tags"`
	Context       []types.TechnologyContext `json:"context"`
	Error         string                    `json:"error,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	input := strings.TrimSpace(req.UserInput)
	if input == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_input is required")
	}

	st, err := s.pipeline.Analyze(c.Request().Context(), input)
	if err != nil {
		return s.stageError(err)
	}
	return c.JSON(http.StatusOK, AnalyzeResponse{
		UserInput: st.RequestText,
		Tags:      nonNil(st.Tags),
		SubTags:   nonNil(st.SubTags),
		Context:   nonNil(st.ResearchContext),
	})
}

func (s *Server) handleRoadmap(c echo.Context) error {
	var req RoadmapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	switch {
	case strings.TrimSpace(req.UserInput) == "":
		return echo.NewHTTPError(http.StatusBadRequest, "user_input is required")
	case len(req.Tags) == 0:
		return echo.NewHTTPError(http.StatusBadRequest, "tags are required")
	case len(req.Context) == 0:
		return echo.NewHTTPError(http.StatusBadRequest, "context is required")
	}

	st, err := s.pipeline.SynthesizeFrom(c.Request().Context(), pipeline.State{
		RequestText:     strings.TrimSpace(req.UserInput),
		Tags:            req.Tags,
		SubTags:         req.SubTags,
		ResearchContext: req.Context,
	})
	if err != nil {
		return s.stageError(err)
	}
	return c.JSON(http.StatusOK, RoadmapResponse{Roadmap: st.Roadmap, RoadmapID: st.RoadmapID})
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	request := req.text()
	if request == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "request or diagnosis is required")
	}

	st, err := s.pipeline.Run(c.Request().Context(), request)
	resp := GenerateResponse{
		Success:       err == nil,
		Roadmap:       st.Roadmap,
		RoadmapID:     st.RoadmapID,
		ExtractedTags: nonNil(st.Tags),
		Context:       nonNil(st.ResearchContext),
		Error:         st.Error,
	}
	if err != nil {
		return c.JSON(statusFor(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// handleGenerateStream writes one NDJSON event per line, flushing after
// each. A client disconnect cancels the request context and with it the
// generation.
func (s *Server) handleGenerateStream(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	request := req.text()
	if request == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "request or diagnosis is required")
	}

	ctx := c.Request().Context()
	events := s.pipeline.Stream(ctx, request)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	for ev := range events {
		if err := pipeline.EncodeNDJSON(res, ev); err != nil {
			s.log.Warn("writing stream event", zap.Error(err))
			drain(events)
			return nil
		}
		res.Flush()
	}
	return nil
}

// drain discards the rest of a stream whose consumer has gone. The request
// context is cancelled once the handler returns, which ends the stream.
func drain(events <-chan pipeline.Event) {
	go func() {
		for range events {
		}
	}()
}

func (s *Server) handleListRoadmaps(c echo.Context) error {
	opts := store.ListOptions{Tag: c.QueryParam("tag")}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	list, err := s.roadmaps.List(c.Request().Context(), opts)
	if err != nil {
		s.log.Error("listing roadmaps", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list roadmaps")
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

func (s *Server) handleGetRoadmap(c echo.Context) error {
	rec, err := s.roadmaps.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "roadmap not found")
	}
	if err != nil {
		s.log.Error("reading roadmap", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not read roadmap")
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) stageError(err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("pipeline failed", zap.Error(err))
	}
	return echo.NewHTTPError(status, err.Error())
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, extract.ErrEmptyInput),
		errors.Is(err, research.ErrNoTags),
		errors.Is(err, synth.ErrNoTags),
		errors.Is(err, synth.ErrNoContext):
		return http.StatusBadRequest
	case errors.Is(err, extract.ErrNoTags):
		return http.StatusUnprocessableEntity
	case errors.Is(err, extract.ErrParseFailed),
		errors.Is(err, synth.ErrParseFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
