// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// DiagnosisAnswer is one answered question from a structured diagnosis.
type DiagnosisAnswer struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// DiagnosisContext is the bundle a structured diagnosis hands to the
// pipeline in place of free text.
type DiagnosisContext struct {
	Domain  string            `json:"domain" yaml:"domain"`
	Goal    string            `json:"goal" yaml:"goal"`
	Answers []DiagnosisAnswer `json:"answers,omitempty" yaml:"answers,omitempty"`
}

// RequestText renders the bundle as the free-text request consumed by tag
// extraction. Empty fields and unanswered questions are omitted.
func (d DiagnosisContext) RequestText() string {
	var lines []string
	if s := strings.TrimSpace(d.Domain); s != "" {
		lines = append(lines, "Domain: "+s)
	}
	if s := strings.TrimSpace(d.Goal); s != "" {
		lines = append(lines, "Goal: "+s)
	}
	for _, a := range d.Answers {
		ans := strings.TrimSpace(a.Answer)
		if ans == "" {
			continue
		}
		if q := strings.TrimSpace(a.Question); q != "" {
			lines = append(lines, "Q: "+q)
		}
		lines = append(lines, "A: "+ans)
	}
	return strings.Join(lines, "\n")
}
