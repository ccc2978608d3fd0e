package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewSchema() *Schema {
	return &Schema{
		Name:        "test-review",
		Description: "A code review verdict",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary":  map[string]any{"type": "string"},
				"issues":   map[string]any{"type": "integer", "minimum": 0},
				"severity": map[string]any{"type": "string", "enum": []any{"low", "medium", "high"}},
			},
			"required": []any{"summary", "issues"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"summary":"Off by one in the loop","issues":1,"severity":"medium"}`, false},
		{"optional field omitted", `{"summary":"Looks fine","issues":0}`, false},
		{"missing required", `{"summary":"No count"}`, true},
		{"wrong type", `{"summary":"Bad count","issues":"two"}`, true},
		{"enum violation", `{"summary":"Odd","issues":3,"severity":"critical"}`, true},
		{"negative minimum", `{"summary":"Odd","issues":-1}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateReply(reviewSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var invErr *InvalidResponseError
			assert.ErrorAs(t, err, &invErr)
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateReply(nil, json.RawMessage(`{"anything":"goes"}`)))
}

func TestValidateResponse_NestedObjects(t *testing.T) {
	schema := &Schema{
		Name:        "test-nested-attempts",
		Description: "Nested test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"problem": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
					},
					"required": []any{"title"},
				},
				"durations": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"problem", "durations"},
		},
	}

	valid := json.RawMessage(`{"problem":{"title":"Two Sum"},"durations":[90,45,30]}`)
	assert.NoError(t, validateReply(schema, valid))

	invalid := json.RawMessage(`{"problem":{"title":"Two Sum"},"durations":["slow","fast"]}`)
	assert.Error(t, validateReply(schema, invalid), "wrong array item type")
}
