// Package api exposes the interpretation pipeline over HTTP. Routes
// mirror the conversational client contract: a chat endpoint for turns,
// context management, and a direct structured-search endpoint.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/hearthlabs/hearth/internal/interpret"
	"github.com/hearthlabs/hearth/internal/schema"
)

// Server holds the HTTP handler and its collaborators.
type Server struct {
	svc *interpret.Service
	log *slog.Logger
}

// NewServer builds the API server around an interpretation service.
func NewServer(svc *interpret.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log}
}

// Handler returns the chi router for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/chat/query", s.handleChatQuery)
		r.Post("/context/reset", s.handleContextReset)
		r.Get("/context/current", s.handleContextCurrent)
		r.Post("/listings/search", s.handleListingsSearch)
	})
	return r
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "api",
		"ts":      time.Now().UTC().Format(time.RFC3339),
	})
}

// chatRequest is one conversational turn from the client.
type chatRequest struct {
	Message    string `json:"message"`
	SessionID  string `json:"sessionId"`
	IsNewQuery bool   `json:"isNewQuery"`
}

// chatResponse is the turn envelope the web client renders.
type chatResponse struct {
	SessionID           string              `json:"sessionId"`
	AssistantSummary    string              `json:"assistantSummary"`
	Filters             schema.FilterSet    `json:"filters"`
	ClarifyingQuestions []string            `json:"clarifyingQuestions"`
	Refinements         []schema.Refinement `json:"refinements"`
	Listings            []schema.Listing    `json:"listings"`
	Total               int                 `json:"total"`
	Page                int                 `json:"page"`
	PageSize            int                 `json:"pageSize"`
}

func (s *Server) handleChatQuery(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	// A client without a session yet gets one minted here; it comes back
	// in the response and scopes every following turn.
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	res, err := s.svc.Interpret(r.Context(), req.SessionID, req.Message, req.IsNewQuery)
	if err != nil {
		s.writeInterpretError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:           res.SessionID,
		AssistantSummary:    res.Summary,
		Filters:             res.Filters,
		ClarifyingQuestions: emptyIfNilStrings(res.ClarifyingQuestions),
		Refinements:         emptyIfNilRefinements(res.Refinements),
		Listings:            emptyIfNilListings(res.Page.Items),
		Total:               res.Page.Total,
		Page:                res.Page.Page,
		PageSize:            res.Page.PageSize,
	})
}

func (s *Server) handleContextReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	s.svc.Reset(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Context reset successfully"})
}

func (s *Server) handleContextCurrent(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Context(sessionID))
}

func (s *Server) handleListingsSearch(w http.ResponseWriter, r *http.Request) {
	var f schema.FilterSet
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	page, err := s.svc.Search(r.Context(), f)
	if err != nil {
		s.writeInterpretError(w, err)
		return
	}
	if page.Items == nil {
		page.Items = []schema.Listing{}
	}
	writeJSON(w, http.StatusOK, page)
}

// writeInterpretError maps pipeline errors onto status codes: filter
// validation is the caller's problem, anything else gets a generic
// apology with the detail kept in the server log.
func (s *Server) writeInterpretError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid filters",
			"issues": verr.Issues,
		})
		return
	}
	s.log.Error("turn failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Sorry, something went wrong on our side. Please try again.")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func emptyIfNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIfNilRefinements(s []schema.Refinement) []schema.Refinement {
	if s == nil {
		return []schema.Refinement{}
	}
	return s
}

func emptyIfNilListings(s []schema.Listing) []schema.Listing {
	if s == nil {
		return []schema.Listing{}
	}
	return s
}
