// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, c.Write(&pb))
	return pb.GetCounter().GetValue()
}

func TestNewIsSingleton(t *testing.T) {
	assert.Same(t, New(), New())
}

func TestRecordLookup(t *testing.T) {
	m := New()
	c := m.ResearchLookups.WithLabelValues(LookupCached)
	before := counterValue(t, c)
	m.RecordLookup(LookupCached)
	m.RecordLookup(LookupCached)
	assert.Equal(t, before+2, counterValue(t, c))
}

func TestRecordStreamEvent(t *testing.T) {
	m := New()
	c := m.StreamEvents.WithLabelValues("progress")
	before := counterValue(t, c)
	m.RecordStreamEvent("progress")
	assert.Equal(t, before+1, counterValue(t, c))
}

func TestObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage("extracting", nil, 10*time.Millisecond)
	m.ObserveStage("extracting", errors.New("boom"), time.Second)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	outcomes := map[string]uint64{}
	for _, f := range families {
		if f.GetName() != "roadmap_stage_duration_seconds" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["stage"] == "extracting" {
				outcomes[labels["outcome"]] += metric.GetHistogram().GetSampleCount()
			}
		}
	}
	assert.GreaterOrEqual(t, outcomes[OutcomeOK], uint64(1))
	assert.GreaterOrEqual(t, outcomes[OutcomeError], uint64(1))
}

func TestNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStage("x", nil, time.Second)
		m.RecordLookup(LookupOK)
		m.RecordStreamEvent("chunk")
	})
}
