package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "ws://localhost:8000/rpc", cfg.SurrealDBURL)
	assert.Equal(t, "google", cfg.LLMProvider)
	assert.Equal(t, 90*time.Minute, cfg.SingleCallThreshold)
	assert.Equal(t, 30*time.Minute, cfg.WindowMax)
	assert.Equal(t, 20, cfg.GraphBatchSize)
	assert.Equal(t, 24*time.Hour, cfg.JobMaxAge)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LORELINE_LLM_PROVIDER", "ollama")
	t.Setenv("LORELINE_WORKERS", "8")
	t.Setenv("LORELINE_WINDOW_MAX", "15m")
	t.Setenv("LORELINE_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.WindowMax)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("LORELINE_WORKERS", "many")
	t.Setenv("LORELINE_JOB_TIMEOUT", "soonish")

	cfg := Load()
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 30*time.Minute, cfg.JobTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Load()
	cfg.LLMProvider = "mainframe"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.SurrealDBURL = ""
	assert.Error(t, cfg.Validate())
}
