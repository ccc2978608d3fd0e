// Package hints asks an LLM for a nudge on a failing exercise.
package hints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/drill/internal/llm"
	"github.com/abhisek/drill/internal/store"
)

// Purpose labels hint requests in LLM events.
const Purpose = "hint"

// Config holds hint generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxSourceBytes caps how much of the solution, tests and
	// diagnostic is sent.
	MaxSourceBytes int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:      400,
		Temperature:    0.3,
		MaxSourceBytes: 6000,
	}
}

// Input is what a hint is generated from.
type Input struct {
	Title        string
	Instructions string
	TestCode     string
	Solution     string
	Diagnostic   string
}

// InputFor builds an Input from a problem, the current solution source and
// the most recent failure, which may be nil.
func InputFor(p *store.Problem, solution string, lastFailure *store.Attempt) Input {
	in := Input{
		Title:        p.Title,
		Instructions: p.Instructions,
		TestCode:     p.TestCode,
		Solution:     solution,
	}
	if lastFailure != nil {
		in.Diagnostic = lastFailure.Diagnostic
	}
	return in
}

// Hint is a generated hint.
type Hint struct {
	Hint     string `json:"hint"`
	Concept  string `json:"concept"`
	NextStep string `json:"next_step"`
}

// String renders the hint for display.
func (h Hint) String() string {
	return fmt.Sprintf("💡 %s\n📚 Concept: %s\n👉 Next: %s", h.Hint, h.Concept, h.NextStep)
}

// Service generates hints.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a hint service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Generate asks the provider for a hint.
func (s *Service) Generate(ctx context.Context, in Input) (*Hint, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	in.Solution = truncate(in.Solution, s.cfg.MaxSourceBytes)
	in.TestCode = truncate(in.TestCode, s.cfg.MaxSourceBytes)
	in.Diagnostic = truncate(in.Diagnostic, s.cfg.MaxSourceBytes)

	userMsg, err := buildHintMessage(in)
	if err != nil {
		return nil, fmt.Errorf("build hint prompt: %w", err)
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      hintSystemPrompt,
		Prompt:      userMsg,
		Schema:      HintSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM hint failed: %w", err)
	}

	var h Hint
	if err := json.Unmarshal(resp.Content, &h); err != nil {
		return nil, fmt.Errorf("failed to parse hint response: %w", err)
	}
	if strings.TrimSpace(h.Hint) == "" {
		return nil, &llm.InvalidResponseError{Content: resp.Content, Err: errors.New("empty hint")}
	}
	return &h, nil
}

// truncate keeps the last max bytes of s, where failures and the code
// being edited usually end up.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	start := len(s) - max
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return "…" + s[start:]
}
