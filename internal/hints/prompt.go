package hints

import (
	"bytes"
	"text/template"
)

const hintSystemPrompt = `You are a patient programming coach. A learner is working on a small coding exercise and their solution does not pass the tests yet.

Rules:
- Never write the full solution or a corrected version of their function.
- Short code fragments of at most one line are allowed when they illustrate syntax.
- Base the hint on the test failure when one is given.
- If the solution is still the empty stub, suggest how to get started.
- Keep every field brief.`

var hintUserTemplate = template.Must(template.New("hint").Parse(`Exercise: {{.Title}}

Instructions:
{{.Instructions}}

Test code:
{{.TestCode}}

Current solution:
{{.Solution}}
{{if .Diagnostic}}
Last test failure:
{{.Diagnostic}}
{{else}}
The solution has not been checked yet.
{{end}}`))

func buildHintMessage(in Input) (string, error) {
	var buf bytes.Buffer
	if err := hintUserTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}
