package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/drill/internal/store"
)

// NewProvider builds the backend named by cfg. Calls are recorded to
// events and retried per cfg.Retry within cfg.Timeout.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *zap.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var backend Provider
	switch cfg.Provider {
	case Anthropic:
		backend = newClaude(cfg)
	case OpenAI, OpenRouter:
		backend = newChat(cfg)
	case Gemini:
		g, err := newGemini(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backend = g
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	// Each attempt is recorded separately.
	return WithRetry(WithRecorder(backend, cfg.Provider, events, logger), cfg.Retry, cfg.Timeout), nil
}
