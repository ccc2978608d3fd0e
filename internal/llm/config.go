package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Backend names.
const (
	Anthropic  = "anthropic"
	OpenAI     = "openai"
	Gemini     = "gemini"
	OpenRouter = "openrouter"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvProvider = "DRILL_LLM_PROVIDER"
	EnvAPIKey   = "DRILL_LLM_API_KEY"
	EnvModel    = "DRILL_LLM_MODEL"
	EnvBaseURL  = "DRILL_LLM_BASE_URL"
	EnvTimeout  = "DRILL_LLM_TIMEOUT"
)

var defaultModels = map[string]string{
	Anthropic:  "claude-haiku-4-5",
	OpenAI:     "gpt-4o-mini",
	Gemini:     "gemini-2.5-flash",
	OpenRouter: "google/gemini-2.5-flash",
}

const openRouterURL = "https://openrouter.ai/api/v1"

// vendorKeys are the SDKs' own key variables, probed by DiscoverConfig in
// this order.
var vendorKeys = []struct{ provider, env string }{
	{Anthropic, "ANTHROPIC_API_KEY"},
	{OpenAI, "OPENAI_API_KEY"},
	{Gemini, "GEMINI_API_KEY"},
	{OpenRouter, "OPENROUTER_API_KEY"},
}

// Config selects and configures one backend.
type Config struct {
	Provider string `validate:"oneof=anthropic openai gemini openrouter"`
	APIKey   string `validate:"required"`
	Model    string `validate:"required"`
	// BaseURL overrides the backend endpoint.
	BaseURL string `validate:"omitempty,url"`
	// Timeout bounds a whole Generate call, retries included.
	Timeout time.Duration `validate:"gte=0"`
	Retry   Backoff
}

var validate = validator.New()

// Validate reports a missing key or an unknown backend.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("llm config: %w", err)
	}
	return nil
}

// NewConfig returns settings for provider with its default model.
func NewConfig(provider, apiKey string) Config {
	c := Config{
		Provider: provider,
		APIKey:   apiKey,
		Model:    defaultModels[provider],
		Timeout:  45 * time.Second,
		Retry:    DefaultBackoff(),
	}
	if provider == OpenRouter {
		c.BaseURL = openRouterURL
	}
	return c
}

// ConfigFromEnv reads DRILL_LLM_* variables. The provider defaults to
// anthropic. The result may still fail Validate when no key is set.
func ConfigFromEnv() (Config, error) {
	provider := os.Getenv(EnvProvider)
	if provider == "" {
		provider = Anthropic
	}
	c := NewConfig(provider, os.Getenv(EnvAPIKey))
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return c, nil
}

// DiscoverConfig returns settings for the first backend whose vendor key
// variable is set.
func DiscoverConfig() (Config, bool) {
	for _, k := range vendorKeys {
		if key := os.Getenv(k.env); key != "" {
			return NewConfig(k.provider, key), true
		}
	}
	return Config{}, false
}
