// Package config loads runtime configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM provider
	LLMProvider       string
	LLMModel          string
	GoogleAPIKey      string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	OllamaHost        string
	RequestsPerMinute int

	// Extraction
	CaptionAPIURL      string
	CaptionAPIKey      string
	ExtractMaxAttempts int
	ExtractBackoff     time.Duration
	ExtractTimeout     time.Duration

	// Synthesis
	SingleCallThreshold time.Duration
	WindowMax           time.Duration

	// Knowledge reduction
	GraphBatchSize   int
	GraphConcurrency int

	// Pipeline
	Workers    int
	JobTimeout time.Duration
	JobMaxAge  time.Duration

	// Publishing
	WebhookURL string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from the environment, after loading a .env
// file when one is present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "loreline"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "pipeline"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:       getEnv("LORELINE_LLM_PROVIDER", "google"),
		LLMModel:          getEnv("LORELINE_LLM_MODEL", "gemini-2.0-flash"),
		GoogleAPIKey:      getEnv("GOOGLE_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		RequestsPerMinute: getEnvInt("LORELINE_LLM_RPM", 30),

		CaptionAPIURL:      getEnv("LORELINE_CAPTION_API_URL", ""),
		CaptionAPIKey:      getEnv("LORELINE_CAPTION_API_KEY", ""),
		ExtractMaxAttempts: getEnvInt("LORELINE_EXTRACT_ATTEMPTS", 3),
		ExtractBackoff:     getEnvDuration("LORELINE_EXTRACT_BACKOFF", time.Second),
		ExtractTimeout:     getEnvDuration("LORELINE_EXTRACT_TIMEOUT", 30*time.Second),

		SingleCallThreshold: getEnvDuration("LORELINE_SINGLE_CALL_THRESHOLD", 90*time.Minute),
		WindowMax:           getEnvDuration("LORELINE_WINDOW_MAX", 30*time.Minute),

		GraphBatchSize:   getEnvInt("LORELINE_GRAPH_BATCH_SIZE", 20),
		GraphConcurrency: getEnvInt("LORELINE_GRAPH_CONCURRENCY", 3),

		Workers:    getEnvInt("LORELINE_WORKERS", 4),
		JobTimeout: getEnvDuration("LORELINE_JOB_TIMEOUT", 30*time.Minute),
		JobMaxAge:  getEnvDuration("LORELINE_JOB_MAX_AGE", 24*time.Hour),

		WebhookURL: getEnv("LORELINE_WEBHOOK_URL", ""),

		LogFile:  getEnv("LORELINE_LOG_FILE", "/tmp/loreline.log"),
		LogLevel: parseLogLevel(getEnv("LORELINE_LOG_LEVEL", "INFO")),
	}
}

// Validate checks the configuration for values no component can work with.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SurrealDBURL, validation.Required),
		validation.Field(&c.LLMProvider, validation.Required,
			validation.In("google", "openai", "anthropic", "ollama")),
		validation.Field(&c.LLMModel, validation.Required),
		validation.Field(&c.Workers, validation.Min(1), validation.Max(64)),
		validation.Field(&c.ExtractMaxAttempts, validation.Min(1), validation.Max(10)),
		validation.Field(&c.GraphBatchSize, validation.Min(1)),
		validation.Field(&c.GraphConcurrency, validation.Min(1)),
	)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
