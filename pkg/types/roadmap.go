// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RoadmapDocument is the structured multi-technology learning plan. JSON
// field names match the shape the model is instructed to emit.
type RoadmapDocument struct {
	Title        string              `json:"roadmapTitle" yaml:"roadmap_title"`
	Technologies []TechnologyRoadmap `json:"technologies" yaml:"technologies"`

	// UserRequest and ExtractedTags are attached after generation.
	UserRequest   string   `json:"userRequest,omitempty" yaml:"user_request,omitempty"`
	ExtractedTags []string `json:"extractedTags,omitempty" yaml:"extracted_tags,omitempty"`
}

// TechnologyRoadmap is the learning plan for a single technology.
type TechnologyRoadmap struct {
	Name    string          `json:"name" yaml:"name"`
	Summary string          `json:"summary" yaml:"summary"`
	Phases  []LearningPhase `json:"phases" yaml:"phases"`
}

// LearningPhase groups steps at one level (foundation, applied, practice).
type LearningPhase struct {
	PhaseName string         `json:"phaseName" yaml:"phase_name"`
	Order     int            `json:"order" yaml:"order"`
	Steps     []LearningStep `json:"steps" yaml:"steps"`
}

// LearningStep is one topic with an estimate and cited sources.
type LearningStep struct {
	Topic         string `json:"topic" yaml:"topic"`
	EstimatedTime string `json:"estimatedTime" yaml:"estimated_time"`
	SourceLinks   []Link `json:"sourceLinks" yaml:"source_links"`
}
