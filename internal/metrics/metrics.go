// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics registers the Prometheus collectors for the roadmap
// pipeline. Collectors are created once per process; every caller of New
// shares them.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Research lookup outcomes.
const (
	LookupOK     = "ok"
	LookupFailed = "failed"
	LookupCached = "cached"
)

// Stage outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	global *Metrics
	once   sync.Once
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	StageDuration   *prometheus.HistogramVec
	ResearchLookups *prometheus.CounterVec
	StreamEvents    *prometheus.CounterVec
}

// New returns the process-wide Metrics, registering them on first use.
//
// Metrics:
//   - roadmap_stage_duration_seconds{stage,outcome}
//   - roadmap_research_lookups_total{outcome}
//   - roadmap_stream_events_total{type}
func New() *Metrics {
	once.Do(func() {
		global = &Metrics{
			StageDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "roadmap_stage_duration_seconds",
					Help:    "Duration of pipeline stages in seconds",
					Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
				},
				[]string{"stage", "outcome"},
			),
			ResearchLookups: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "roadmap_research_lookups_total",
					Help: "Total number of per-tag research lookups",
				},
				[]string{"outcome"},
			),
			StreamEvents: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "roadmap_stream_events_total",
					Help: "Total number of streamed pipeline events",
				},
				[]string{"type"},
			),
		}
	})
	return global
}

// ObserveStage records how long a stage took. A nil receiver is a no-op.
func (m *Metrics) ObserveStage(stage string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.StageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

// RecordLookup counts one research lookup.
func (m *Metrics) RecordLookup(outcome string) {
	if m == nil {
		return
	}
	m.ResearchLookups.WithLabelValues(outcome).Inc()
}

// RecordStreamEvent counts one streamed event by type.
func (m *Metrics) RecordStreamEvent(eventType string) {
	if m == nil {
		return
	}
	m.StreamEvents.WithLabelValues(eventType).Inc()
}
