package llm

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drill/internal/store"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvProvider, EnvAPIKey, EnvModel, EnvBaseURL, EnvTimeout} {
		t.Setenv(k, "")
	}
	for _, k := range vendorKeys {
		t.Setenv(k.env, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv(EnvProvider, OpenRouter)
	t.Setenv(EnvAPIKey, "sk-or")
	t.Setenv(EnvTimeout, "10s")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "google/gemini-2.5-flash", cfg.Model)
	assert.Equal(t, openRouterURL, cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestConfigFromEnvDefaultsNeedKey(t *testing.T) {
	clearLLMEnv(t)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Anthropic, cfg.Provider)
	assert.Error(t, cfg.Validate())
}

func TestConfigFromEnvBadTimeout(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv(EnvTimeout, "soon")
	_, err := ConfigFromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := NewConfig(Gemini, "key")
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Provider = "llamafile"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.BaseURL = "not a url"
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Retry.Attempts = 0
	assert.Error(t, bad.Validate())
}

func TestDiscoverConfig(t *testing.T) {
	clearLLMEnv(t)
	_, found := DiscoverConfig()
	assert.False(t, found)

	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("OPENAI_API_KEY", "o")
	cfg, found := DiscoverConfig()
	require.True(t, found)
	assert.Equal(t, OpenAI, cfg.Provider)
	assert.Equal(t, "o", cfg.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
}

func TestNewProvider(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "drill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	p, err := NewProvider(t.Context(), NewConfig(Anthropic, "k"), st.EventRepo(), nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", p.ModelID())

	_, err = NewProvider(t.Context(), Config{Provider: Anthropic}, st.EventRepo(), nil)
	assert.Error(t, err)
}
