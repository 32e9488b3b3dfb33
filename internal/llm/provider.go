// Package llm provides a provider-agnostic adapter for hosted completion
// APIs. Used by the remote-model query parsers. Talks to the APIs with
// net/http directly.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider is the interface for LLM completions.
type Provider interface {
	// Complete sends a prompt and returns the response text.
	Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error)
	// Name returns a human-readable provider name (e.g., "openai/gpt-4o-mini").
	Name() string
}

// CompletionOpts configures a single completion request.
type CompletionOpts struct {
	MaxTokens   int     // Max tokens to generate (0 = provider default)
	Temperature float64 // 0.0-2.0 (0 = deterministic)
	Format      string  // "json" for structured output, empty for plain text
	System      string  // System prompt (optional)
}

// Config holds provider configuration.
type Config struct {
	Provider string        // "openai", "anthropic", "openrouter"
	Model    string        // e.g., "gpt-4o-mini", "claude-3-sonnet-20240229"
	APIKey   string        // API key (empty = read from env)
	BaseURL  string        // Optional URL override
	Timeout  time.Duration // Per-request timeout (0 = no client timeout)
}

// Default models per provider, matching the hosted tiers the parsers were
// tuned against.
const (
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAnthropicModel  = "claude-3-sonnet-20240229"
	DefaultOpenRouterModel = "anthropic/claude-3-haiku"
)

// NewProvider creates an LLM provider from the given config.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY env var")
		}
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return &openaiProvider{
			apiKey:  key,
			model:   model,
			baseURL: baseURL,
			client:  httpClient(cfg.Timeout),
		}, nil

	case "anthropic":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY env var")
		}
		model := cfg.Model
		if model == "" {
			model = DefaultAnthropicModel
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.anthropic.com/v1"
		}
		return &anthropicProvider{
			apiKey:  key,
			model:   model,
			baseURL: baseURL,
			client:  httpClient(cfg.Timeout),
		}, nil

	case "openrouter":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENROUTER_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openrouter provider requires OPENROUTER_API_KEY env var")
		}
		model := cfg.Model
		if model == "" {
			model = DefaultOpenRouterModel
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		return &openrouterProvider{
			apiKey:  key,
			model:   model,
			baseURL: baseURL,
			client:  httpClient(cfg.Timeout),
		}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: openai, anthropic, openrouter)", cfg.Provider)
	}
}
