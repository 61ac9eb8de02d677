// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/roadmap-engine/internal/llm"
)

// systemPrompt instructs the model to return canonical technology names as
// a JSON object with "tags" and "reasoning".
const systemPrompt = `You extract technology tags from a learner's request.

Rules:
1. Extract concrete technologies: programming languages, frameworks, libraries, tools, platforms.
2. Skip generic words such as "learning", "roadmap", "beginner".
3. Use the official English name of each technology (for example "React", "Next.js", "TypeScript", "Docker"), even when the request spells it phonetically or in another script.
4. Add closely related technologies the learner will need (Next.js implies React).
5. Write "reasoning" in the language of the request.

Respond with a single JSON object and nothing else:
{"tags": ["<technology>", "..."], "reasoning": "<short explanation>"}

Example
Request: I want to build a web app with React and Next.js
Response: {"tags": ["React", "Next.js", "TypeScript"], "reasoning": "React and Next.js are named explicitly; TypeScript is the recommended language for Next.js projects."}`

var userPromptTmpl = template.Must(template.New("extract").Parse(`Extract the technology tags from the following request:

{{.Request}}
`))

// buildMessages renders the system and user messages for one request.
func buildMessages(request string) ([]llm.Message, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, struct{ Request string }{Request: request}); err != nil {
		return nil, err
	}
	return []llm.Message{llm.System(systemPrompt), llm.User(buf.String())}, nil
}
