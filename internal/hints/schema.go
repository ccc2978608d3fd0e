package hints

import "github.com/abhisek/drill/internal/llm"

// HintSchema defines the JSON schema for a coding hint.
var HintSchema = &llm.Schema{
	Name:        "coding-hint",
	Description: "A nudge toward fixing a failing exercise without giving away the solution",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "One or two sentences pointing at what is wrong or missing",
			},
			"concept": map[string]any{
				"type":        "string",
				"description": "The programming concept the learner should review (2-5 words)",
			},
			"next_step": map[string]any{
				"type":        "string",
				"description": "A single concrete thing to try next",
			},
		},
		"required":             []any{"hint", "concept", "next_step"},
		"additionalProperties": false,
	},
}
