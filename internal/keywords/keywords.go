// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords resolves a technology name to its static keyword list.
// Each technology has one lookup file named after the normalized technology
// name (react.json, nextjs.json, typescript.yaml). A built-in set is
// embedded; a directory on disk can replace it.
package keywords

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

//go:embed data/*
var builtinFS embed.FS

// ErrNoKeywords is returned when a lookup file exists but holds none of the
// expected keyword lists.
var ErrNoKeywords = errors.New("no keyword list under the expected keys")

// Keyword is one entry of a lookup file.
type Keyword struct {
	Word           string `json:"word" yaml:"word"`
	Description    string `json:"description" yaml:"description"`
	RelevanceLevel int    `json:"relevance_level" yaml:"relevance_level"`
}

// extensions are tried in order for every normalized name.
var extensions = []string{".json", ".yaml", ".yml"}

// Normalize maps a technology name to its lookup file stem:
// lower-cased with spaces and dots removed ("Next.js" becomes "nextjs").
func Normalize(technology string) string {
	s := strings.ToLower(strings.TrimSpace(technology))
	return strings.NewReplacer(" ", "", ".", "").Replace(s)
}

// Lookup reads keyword files from a file system.
type Lookup struct {
	fsys fs.FS
}

// New returns a Lookup over fsys, whose root holds the lookup files.
func New(fsys fs.FS) *Lookup {
	return &Lookup{fsys: fsys}
}

// Builtin returns a Lookup over the embedded keyword files.
func Builtin() *Lookup {
	sub, err := fs.Sub(builtinFS, "data")
	if err != nil {
		panic(fmt.Sprintf("keywords: embedded data: %v", err))
	}
	return New(sub)
}

// Keywords returns every keyword recorded for technology. A missing lookup
// file is not an error: Keywords returns nil, nil.
func (l *Lookup) Keywords(technology string) ([]Keyword, error) {
	stem := Normalize(technology)
	if stem == "" {
		return nil, nil
	}
	for _, ext := range extensions {
		name := stem + ext
		data, err := fs.ReadFile(l.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		kws, err := parse(name, data, candidateKeys(technology))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		return kws, nil
	}
	return nil, nil
}

// SubTags returns the keywords for technology whose relevance is at least
// minRelevance, tagged with technology as their parent.
func (l *Lookup) SubTags(technology string, minRelevance int) ([]types.SubTag, error) {
	kws, err := l.Keywords(technology)
	if err != nil {
		return nil, err
	}
	var out []types.SubTag
	for _, kw := range kws {
		if kw.RelevanceLevel < minRelevance {
			continue
		}
		out = append(out, types.SubTag{
			Word:           kw.Word,
			Description:    kw.Description,
			RelevanceLevel: kw.RelevanceLevel,
			Technology:     technology,
		})
	}
	return out, nil
}

// Available lists the normalized names that have a lookup file.
func (l *Lookup) Available() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := path.Ext(e.Name())
		for _, want := range extensions {
			if ext == want {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
				break
			}
		}
	}
	return names, nil
}

func candidateKeys(technology string) []string {
	lower := strings.ToLower(strings.TrimSpace(technology))
	return []string{
		Normalize(technology) + "_keywords_with_details",
		lower + "_keywords_with_details",
		"keywords_with_details",
		"keywords",
	}
}

func parse(name string, data []byte, keys []string) ([]Keyword, error) {
	if path.Ext(name) == ".json" {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		for _, k := range keys {
			raw, ok := doc[k]
			if !ok {
				continue
			}
			var kws []Keyword
			if err := json.Unmarshal(raw, &kws); err != nil {
				return nil, fmt.Errorf("key %s: %w", k, err)
			}
			return kws, nil
		}
		return nil, ErrNoKeywords
	}

	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for _, k := range keys {
		node, ok := doc[k]
		if !ok {
			continue
		}
		var kws []Keyword
		if err := node.Decode(&kws); err != nil {
			return nil, fmt.Errorf("key %s: %w", k, err)
		}
		return kws, nil
	}
	return nil, ErrNoKeywords
}
