// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the roadmap-engine pipeline:
// extracted sub-tags, per-technology research context, and the roadmap
// document produced by synthesis, plus per-stage configuration.
package types

// Link is a titled reference URL.
type Link struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// SubTag is a keyword attached to an extracted technology tag. RelevanceLevel
// runs from 1 (lowest) to 5 (highest); synthesis uses it to decide which
// keywords must appear in the foundational phase.
type SubTag struct {
	Word           string `json:"word" yaml:"word"`
	Description    string `json:"description" yaml:"description"`
	RelevanceLevel int    `json:"relevance_level" yaml:"relevance_level"`

	// Technology is the parent tag this keyword belongs to.
	Technology string `json:"technology" yaml:"technology"`
}

// TechnologyContext is the research result for one tag. The research stage
// produces exactly one per requested tag, even when the lookup fails.
type TechnologyContext struct {
	Name    string `json:"name" yaml:"name"`
	Summary string `json:"summary" yaml:"summary"`
	Links   []Link `json:"links" yaml:"links"`
}
