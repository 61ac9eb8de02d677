// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmjson recovers a JSON object from free-form model output.
//
// Model responses arrive in one of three encodings: a fenced code block, a
// bare JSON document, or a JSON object embedded in prose. Decode tries them in
// a fixed priority order and the first tier that yields a valid object wins:
//
//  1. the first ``` fenced block (optional "json" language tag)
//  2. the whole response
//  3. the first balanced top-level {...} span, then the widest {...} span
//
// Tag extraction and roadmap synthesis both decode through this package.
package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no tier yields a JSON object.
var ErrNoJSON = errors.New("no JSON object found in response")

// Tier identifies which extraction strategy produced a result.
type Tier int

const (
	TierNone Tier = iota
	TierFenced
	TierWhole
	TierSpan
)

func (t Tier) String() string {
	switch t {
	case TierFenced:
		return "fenced"
	case TierWhole:
		return "whole"
	case TierSpan:
		return "span"
	default:
		return "none"
	}
}

// fencePattern matches the first fenced block, capturing its body.
var fencePattern = regexp.MustCompile("```(?:json|JSON)?\\s*([\\s\\S]*?)\\s*```")

// FencedBlock returns the body of the first fenced code block in text.
func FencedBlock(text string) (string, bool) {
	m := fencePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Decode unmarshals the first JSON object recovered from text into a fresh T.
// Each tier decodes into its own zero value so a failed tier never leaves
// partial state behind.
func Decode[T any](text string) (T, Tier, error) {
	var zero T
	for _, c := range candidates(text) {
		out, ok := decodeObject[T](c.body)
		if ok {
			return out, c.tier, nil
		}
	}
	return zero, TierNone, ErrNoJSON
}

// Extract returns the raw bytes of the first JSON object recovered from text.
func Extract(text string) ([]byte, Tier, error) {
	raw, tier, err := Decode[json.RawMessage](text)
	if err != nil {
		return nil, TierNone, err
	}
	return []byte(raw), tier, nil
}

type candidate struct {
	tier Tier
	body string
}

func candidates(text string) []candidate {
	var out []candidate
	if body, ok := FencedBlock(text); ok {
		out = append(out, candidate{TierFenced, body})
	}
	out = append(out, candidate{TierWhole, text})
	if span, ok := ScanObject(text); ok {
		out = append(out, candidate{TierSpan, span})
	}
	if span, ok := widestSpan(text); ok {
		out = append(out, candidate{TierSpan, span})
	}
	return out
}

// DecodeObject unmarshals body into a fresh T when body, after trimming,
// is exactly one JSON object. No recovery tiers are applied.
func DecodeObject[T any](body string) (T, bool) {
	return decodeObject[T](body)
}

// decodeObject accepts only JSON objects; arrays and scalars are rejected.
func decodeObject[T any](body string) (T, bool) {
	var out T
	trimmed := bytes.TrimSpace([]byte(body))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, false
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// ScanObject returns the first balanced top-level {...} span in text.
// Braces inside string literals are ignored, and a backslash escapes the
// next character inside a string. It reports false when the first object is
// still open at the end of text.
func ScanObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// widestSpan returns text from the first '{' to the last '}'.
func widestSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
