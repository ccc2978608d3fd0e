package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hintSchema = &Schema{
	Name: "hint",
	Definition: map[string]any{
		"type":       "object",
		"properties": map[string]any{"hint": map[string]any{"type": "string"}},
		"required":   []any{"hint"},
	},
}

func TestPurpose(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "hint", PurposeFrom(WithPurpose(context.Background(), "hint")))
}

func TestClassify(t *testing.T) {
	base := errors.New("boom")

	var rl *RateLimitError
	assert.ErrorAs(t, classify(429, base), &rl)

	var un *UnavailableError
	require.ErrorAs(t, classify(503, base), &un)
	assert.Equal(t, 503, un.Status)
	assert.ErrorAs(t, classify(0, base), &un)

	assert.Same(t, base, classify(401, base))
}

func TestFinish(t *testing.T) {
	req := Request{Prompt: "why does add fail?", Schema: hintSchema}

	resp, err := finish(req, `{"hint":"check the operator"}`, false, "m", Usage{Input: 3, Output: 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"hint":"check the operator"}`, string(resp.Content))
	assert.Equal(t, 7, resp.Usage.Total())

	_, err = finish(req, `{"hint":"check the`, true, "m", Usage{Output: 400})
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = finish(req, `{"tip":"x"}`, false, "m", Usage{})
	var invalid *InvalidResponseError
	assert.ErrorAs(t, err, &invalid)
}
