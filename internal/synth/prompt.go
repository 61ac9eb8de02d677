// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"bytes"
	"cmp"
	"slices"
	"strings"
	"text/template"

	"github.com/pdiddy/roadmap-engine/internal/llm"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// DefaultMaxLinks caps the links per technology written into the prompt.
const DefaultMaxLinks = 5

const systemPrompt = `You design structured learning roadmaps from technology research.

Write every human-readable field in the language of the learner's request. Keep link titles as given.

Respond with one JSON object of this shape and nothing else:
{
  "roadmapTitle": "React and Next.js learning roadmap",
  "technologies": [
    {
      "name": "React",
      "summary": "What the technology is and why it matters.",
      "phases": [
        {
          "phaseName": "Foundations",
          "order": 1,
          "steps": [
            {
              "topic": "Set up a development environment",
              "estimatedTime": "2 hours",
              "sourceLinks": [{"title": "React docs", "url": "https://react.dev"}]
            }
          ]
        }
      ]
    }
  ]
}

Guidelines:
1. Give every technology three phases: foundations (order 1), applied patterns (order 2), practice projects (order 3).
2. Foundation topics take 2 to 4 hours, applied topics 4 to 8 hours, practice topics 8 to 16 hours.
3. Every key concept with relevance 5 or 4 must appear as a topic in the foundations phase.
4. Cite the research links in sourceLinks; do not invent URLs.
5. Order topics so that prerequisites come first.`

var userPromptTmpl = template.Must(template.New("synth").Parse(`Build a learning roadmap from the research below.

## Request
{{.Request}}

## Technologies
{{.Tags}}
{{if .Groups}}
## Key concepts
Relevance runs from 1 to 5; 5 is essential.
{{range .Groups}}
### {{.Technology}}
{{range .Keywords}}- {{.Word}} (relevance {{.RelevanceLevel}}){{if .Description}}: {{.Description}}{{end}}
{{end}}{{end}}{{end}}
## Research
{{range .Contexts}}
### {{.Name}}
Summary: {{.Summary}}
Links:
{{range .Links}}  - {{.Title}}: {{.URL}}
{{else}}  - none
{{end}}{{end}}
Respond with the roadmap JSON object only.
`))

type subTagGroup struct {
	Technology string
	Keywords   []types.SubTag
}

type promptData struct {
	Request  string
	Tags     string
	Groups   []subTagGroup
	Contexts []types.TechnologyContext
}

// BuildMessages renders the synthesis request shared by batch and streaming
// generation. Sub-tags are grouped by parent tag in tag order, each group
// sorted by relevance descending; research links are capped at maxLinks
// (DefaultMaxLinks when maxLinks <= 0).
func BuildMessages(in Input, maxLinks int) ([]llm.Message, error) {
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}

	contexts := make([]types.TechnologyContext, len(in.Research))
	for i, tc := range in.Research {
		if len(tc.Links) > maxLinks {
			tc.Links = tc.Links[:maxLinks]
		}
		contexts[i] = tc
	}

	data := promptData{
		Request:  in.RequestText,
		Tags:     strings.Join(in.Tags, ", "),
		Groups:   groupSubTags(in.Tags, in.SubTags),
		Contexts: contexts,
	}

	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return []llm.Message{llm.System(systemPrompt), llm.User(buf.String())}, nil
}

// groupSubTags buckets sub-tags by technology. Groups follow tag order;
// sub-tags whose parent is not a tag follow in first-seen order.
func groupSubTags(tags []string, subTags []types.SubTag) []subTagGroup {
	if len(subTags) == 0 {
		return nil
	}
	index := map[string]int{}
	var groups []subTagGroup
	add := func(tech string) {
		if _, ok := index[tech]; !ok {
			index[tech] = len(groups)
			groups = append(groups, subTagGroup{Technology: tech})
		}
	}
	for _, t := range tags {
		add(t)
	}
	for _, st := range subTags {
		add(st.Technology)
		g := &groups[index[st.Technology]]
		g.Keywords = append(g.Keywords, st)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Keywords) == 0 {
			continue
		}
		slices.SortStableFunc(g.Keywords, func(a, b types.SubTag) int {
			return cmp.Compare(b.RelevanceLevel, a.RelevanceLevel)
		})
		out = append(out, g)
	}
	return out
}
