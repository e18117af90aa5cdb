// Package oracle wraps LLM providers behind a single completion interface.
package oracle

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Supported providers.
const (
	ProviderGoogle    = "google"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Oracle produces a completion for a prompt.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures an LLM provider.
type Config struct {
	Provider        string
	Model           string
	GoogleAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	// RequestsPerMinute throttles calls to the provider. Zero disables
	// throttling.
	RequestsPerMinute int
}

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
	limiter   *rate.Limiter
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.Provider {
	case ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("Google API key required")
		}
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.GoogleAPIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create google model: %w", err)
		}

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.Model),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	return &Model{
		llm:       model,
		modelName: cfg.Model,
		limiter:   limiter,
	}, nil
}

// Complete generates text for a prompt, waiting on the rate limiter first.
func (m *Model) Complete(ctx context.Context, prompt string) (string, error) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}
	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return response, nil
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}
