// Package llm sends single-turn, schema-constrained prompts to a hosted
// model and returns the JSON it produces.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Provider generates a structured reply for one prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	// ModelID is the model requests are sent to.
	ModelID() string
}

// Request is one prompt. When Schema is set the backend is asked for JSON
// matching it and the reply is validated before it is returned.
type Request struct {
	System      string
	Prompt      string
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema document.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a successful reply.
type Response struct {
	Content json.RawMessage
	Model   string
	Usage   Usage
}

// Usage counts tokens billed for one reply.
type Usage struct {
	Input  int
	Output int
}

// Total is Input plus Output.
func (u Usage) Total() int { return u.Input + u.Output }

type purposeKey struct{}

// WithPurpose labels requests made with ctx, e.g. "hint".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unknown"
}

// ErrTruncated is returned when the reply hit the token limit before the
// JSON was complete.
var ErrTruncated = errors.New("reply truncated at token limit")

// RateLimitError is a 429 from the backend.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string { return "rate limited: " + e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// UnavailableError is a backend or network failure worth retrying.
type UnavailableError struct {
	Status int
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm backend unavailable (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("llm backend unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// InvalidResponseError is a reply that is not valid JSON for the
// requested schema.
type InvalidResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string { return "invalid llm reply: " + e.Err.Error() }
func (e *InvalidResponseError) Unwrap() error { return e.Err }

// classify turns an SDK error carrying an HTTP status into one of the
// error types above. Client errors other than 429 are returned as is.
func classify(status int, err error) error {
	switch {
	case status == 429:
		return &RateLimitError{Err: err}
	case status >= 400 && status < 500:
		return err
	default:
		return &UnavailableError{Status: status, Err: err}
	}
}

// finish validates raw against req.Schema and assembles the Response.
// A truncated reply that fails validation is reported as ErrTruncated.
func finish(req Request, raw string, truncated bool, model string, usage Usage) (*Response, error) {
	content := json.RawMessage(raw)
	if err := validateReply(req.Schema, content); err != nil {
		if truncated {
			return nil, fmt.Errorf("%w after %d tokens", ErrTruncated, usage.Output)
		}
		return nil, err
	}
	return &Response{Content: content, Model: model, Usage: usage}, nil
}
