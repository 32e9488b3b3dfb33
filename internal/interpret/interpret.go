// Package interpret orchestrates one conversation turn: prior context
// in, parsed filters merged, search executed, response composed.
package interpret

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearthlabs/hearth/internal/compose"
	"github.com/hearthlabs/hearth/internal/listings"
	"github.com/hearthlabs/hearth/internal/parser"
	"github.com/hearthlabs/hearth/internal/schema"
	"github.com/hearthlabs/hearth/internal/session"
)

// Result is the complete outcome of one interpreted turn.
type Result struct {
	SessionID           string              `json:"sessionId"`
	Summary             string              `json:"assistantSummary"`
	Filters             schema.FilterSet    `json:"filters"`
	ClarifyingQuestions []string            `json:"clarifyingQuestions"`
	Refinements         []schema.Refinement `json:"refinements"`
	Page                schema.ResultPage   `json:"-"`
}

// Service wires the pipeline together. All collaborators are supplied
// at construction; the service itself holds no mutable state.
type Service struct {
	store    session.Store
	parser   parser.Plugin
	provider listings.Provider
	log      *slog.Logger
}

// New builds an interpretation service.
func New(store session.Store, p parser.Plugin, provider listings.Provider, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, parser: p, provider: provider, log: log}
}

// Interpret runs one turn. isNew flags the start of a fresh query:
// the session's accumulated context is cleared before parsing.
//
// A missing location short-circuits with clarifying questions and an
// empty page; the partial context is still retained so the answer to
// the question completes the original query. Validation failures on
// the merged filters surface as *schema.ValidationError.
func (s *Service) Interpret(ctx context.Context, sessionID, text string, isNew bool) (Result, error) {
	if isNew {
		s.store.Reset(sessionID)
	}

	prior := s.store.Get(sessionID)
	parsed := s.parser.Parse(ctx, text, prior)
	merged := s.store.Merge(sessionID, parsed)

	s.log.Debug("turn interpreted",
		"session", sessionID,
		"parser", s.parser.Name(),
		"parsed", parsed.String(),
		"merged", merged.String())

	if merged.Location == "" {
		return Result{
			SessionID:           sessionID,
			Summary:             compose.MissingLocationSummary,
			Filters:             merged,
			ClarifyingQuestions: s.parser.ClarifyingQuestions(merged),
			Page:                schema.EmptyPage(),
		}, nil
	}

	canonical, err := schema.Validate(merged)
	if err != nil {
		return Result{}, err
	}

	page, err := s.provider.Search(ctx, canonical)
	if err != nil {
		return Result{}, fmt.Errorf("searching listings: %w", err)
	}

	return Result{
		SessionID:   sessionID,
		Summary:     compose.Summarize(canonical, page.Total),
		Filters:     canonical,
		Refinements: s.parser.Refinements(canonical),
		Page:        page,
	}, nil
}

// Context returns the session's current merged filters.
func (s *Service) Context(sessionID string) schema.FilterSet {
	return s.store.Get(sessionID)
}

// Reset clears the session's context.
func (s *Service) Reset(sessionID string) {
	s.store.Reset(sessionID)
}

// Search runs the engine directly against already-structured filters,
// bypassing parsing and session state.
func (s *Service) Search(ctx context.Context, f schema.FilterSet) (schema.ResultPage, error) {
	canonical, err := schema.Validate(f)
	if err != nil {
		return schema.ResultPage{}, err
	}
	return s.provider.Search(ctx, canonical)
}
