// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"slices"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// Stage names a pipeline state. Stages advance strictly forward.
type Stage string

const (
	StageExtracting   Stage = "extracting"
	StageResearching  Stage = "researching"
	StageSynthesizing Stage = "synthesizing"
	StageCompleted    Stage = "completed"
	StageFailed       Stage = "failed"
)

// Terminal reports whether no further stage follows s.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// State is the value threaded through the pipeline. Every stage returns a
// Delta and the orchestrator merges it into a new State; a populated field
// is never overwritten.
type State struct {
	RequestText     string                    `json:"requestText"`
	Tags            []string                  `json:"tags,omitempty"`
	SubTags         []types.SubTag            `json:"subTags,omitempty"`
	ResearchContext []types.TechnologyContext `json:"researchContext,omitempty"`
	Roadmap         *types.RoadmapDocument    `json:"roadmap,omitempty"`
	RoadmapID       string                    `json:"roadmapId,omitempty"`
	Error           string                    `json:"error,omitempty"`
	CurrentStage    Stage                     `json:"currentStage"`
}

// Delta is the output of one stage.
type Delta struct {
	Tags            []string                  `json:"tags,omitempty"`
	SubTags         []types.SubTag            `json:"subTags,omitempty"`
	ResearchContext []types.TechnologyContext `json:"researchContext,omitempty"`
	Roadmap         *types.RoadmapDocument    `json:"roadmap,omitempty"`
}

// merge returns a copy of s with the empty fields that d populates filled in.
func (s State) merge(d Delta) State {
	next := s
	next.Tags = slices.Clone(s.Tags)
	next.SubTags = slices.Clone(s.SubTags)
	next.ResearchContext = slices.Clone(s.ResearchContext)

	if next.Tags == nil && d.Tags != nil {
		next.Tags = slices.Clone(d.Tags)
	}
	if next.SubTags == nil && d.SubTags != nil {
		next.SubTags = slices.Clone(d.SubTags)
	}
	if next.ResearchContext == nil && d.ResearchContext != nil {
		next.ResearchContext = slices.Clone(d.ResearchContext)
	}
	if next.Roadmap == nil && d.Roadmap != nil {
		next.Roadmap = d.Roadmap
	}
	return next
}

// enter returns a copy of s positioned at stage.
func (s State) enter(stage Stage) State {
	s.CurrentStage = stage
	return s
}

// StageError records the stage that failed a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
