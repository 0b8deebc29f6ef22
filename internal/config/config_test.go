package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_BACKEND", "SESSION_BUFFER_SIZE", "OPENROUTER_API_KEY", "OPENROUTER_MODEL", "CORS_ALLOWED_ORIGINS", "HTTP_TIMEOUT_MS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 100, cfg.SessionBufferSize)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "@preset/invisinsights", cfg.Reasoning.Model)
	assert.Equal(t, 0.2, cfg.Reasoning.Temperature)
	assert.Equal(t, 0.8, cfg.Reasoning.TopP)
	assert.False(t, cfg.Reasoning.IsEnabled())
	assert.Equal(t, "https://openrouter.ai/api/v1/chat/completions", cfg.Reasoning.CompletionsEndpoint())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "MONGO")
	t.Setenv("SESSION_BUFFER_SIZE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("OPENROUTER_API_KEY", "k")
	t.Setenv("OPENROUTER_TEMPERATURE", "0.5")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := FromEnv()
	assert.Equal(t, StoreMongo, cfg.StoreBackend)
	assert.Equal(t, 5, cfg.SessionBufferSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.Reasoning.IsEnabled())
	assert.Equal(t, 0.5, cfg.Reasoning.Temperature)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("SESSION_BUFFER_SIZE", "-3")
	t.Setenv("OTEL_ENABLED", "maybe")

	cfg := FromEnv()
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 100, cfg.SessionBufferSize)
	assert.False(t, cfg.Telemetry.Enabled)
}
