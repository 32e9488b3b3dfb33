// Package parser turns a raw conversation turn into a partial filter
// set. Plugins share one contract: the rule-based plugin runs entirely
// on the regex extractor, while the LLM plugins call a hosted model and
// fall back to a degraded regex pass when the model misbehaves. A
// parser never fails a turn; the worst outcome is an empty filter set.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hearthlabs/hearth/internal/llm"
	"github.com/hearthlabs/hearth/internal/schema"
)

// Plugin is the interface every query parser implements.
type Plugin interface {
	// Parse extracts filters from one turn of text. prior holds the
	// session's merged filters for disambiguation; implementations
	// must not mutate it.
	Parse(ctx context.Context, text string, prior schema.FilterSet) schema.FilterSet

	// Refinements suggests next-turn chips for the merged filters.
	// At most five; every message is itself parseable.
	Refinements(f schema.FilterSet) []schema.Refinement

	// ClarifyingQuestions asks for missing required facts. At most three.
	ClarifyingQuestions(f schema.FilterSet) []string

	// Name identifies the plugin for logging.
	Name() string
}

// Config selects and configures a parser plugin.
type Config struct {
	Kind   string // "rule-based", "openai", "anthropic", "openrouter"
	Model  string
	APIKey string // empty = the provider reads its env var
	Debug  bool
	Log    *slog.Logger
}

// New builds the parser named by cfg.Kind. The set is closed: an
// unknown kind is a configuration error, not a silent fallback.
func New(cfg Config) (Plugin, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	switch strings.ToLower(cfg.Kind) {
	case "", "rule-based", "rules":
		return NewRuleBased(), nil
	case "openai", "anthropic", "openrouter":
		provider, err := llm.NewProvider(llm.Config{Provider: cfg.Kind, Model: cfg.Model, APIKey: cfg.APIKey})
		if err != nil {
			return nil, fmt.Errorf("building %s parser: %w", cfg.Kind, err)
		}
		return NewLLM(provider, LLMOpts{Debug: cfg.Debug, Log: log}), nil
	default:
		return nil, fmt.Errorf("unknown parser kind %q (want rule-based, openai, anthropic, or openrouter)", cfg.Kind)
	}
}
