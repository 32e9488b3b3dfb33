package parser

import (
	"context"

	"github.com/hearthlabs/hearth/internal/compose"
	"github.com/hearthlabs/hearth/internal/extract"
	"github.com/hearthlabs/hearth/internal/schema"
)

// RuleBased parses with the regex extractor alone. It is the default
// plugin: deterministic, offline, and fast enough to run per keystroke.
type RuleBased struct{}

// NewRuleBased returns the rule-based parser.
func NewRuleBased() *RuleBased { return &RuleBased{} }

func (p *RuleBased) Name() string { return "rule-based" }

// Parse extracts filters from the turn text. The prior context is
// unused here: rule extraction is context-free and the session merge
// supplies continuity.
func (p *RuleBased) Parse(_ context.Context, text string, _ schema.FilterSet) schema.FilterSet {
	return extract.Extract(text)
}

func (p *RuleBased) Refinements(f schema.FilterSet) []schema.Refinement {
	return compose.Refinements(f)
}

func (p *RuleBased) ClarifyingQuestions(f schema.FilterSet) []string {
	if f.Location != "" {
		return nil
	}
	return compose.MissingLocationQuestions(extract.KnownCities)
}
