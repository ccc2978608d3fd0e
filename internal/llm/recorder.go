package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/drill/internal/store"
)

type recorder struct {
	Provider
	backend string
	events  store.EventRepo
	logger  *zap.Logger
}

// WithRecorder stores every call to p as an LLM request event. Failing to
// store an event is logged and otherwise ignored.
func WithRecorder(p Provider, backend string, events store.EventRepo, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recorder{Provider: p, backend: backend, events: events, logger: logger}
}

func (r *recorder) Generate(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	resp, err := r.Provider.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    r.backend,
		Model:       r.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(started).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.Input
		ev.OutputTokens = resp.Usage.Output
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	r.logger.Debug("llm call",
		zap.String("purpose", ev.Purpose),
		zap.String("model", ev.Model),
		zap.Int64("latency_ms", ev.LatencyMs),
		zap.Int("tokens", ev.InputTokens+ev.OutputTokens),
		zap.Error(err),
	)

	// The caller's ctx may already be done; the event is still worth keeping.
	if serr := r.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); serr != nil {
		r.logger.Warn("record llm event", zap.Error(serr))
	}
	return resp, err
}

// transcript renders a request the way it is shown by `drill llm view`.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString("## system\n" + req.System + "\n\n")
	}
	b.WriteString("## user\n" + req.Prompt + "\n")
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			b.WriteString("\n## schema " + req.Schema.Name + "\n" + string(def) + "\n")
		}
	}
	return b.String()
}
