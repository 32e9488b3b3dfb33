package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewProviderErrors(t *testing.T) {
	// Unknown provider
	_, err := NewProvider(Config{Provider: "unknown"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	// Missing API keys (clear env)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	for _, p := range []string{"openai", "anthropic", "openrouter"} {
		if _, err := NewProvider(Config{Provider: p}); err == nil {
			t.Errorf("expected error for %s without API key", p)
		}
	}
}

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(Config{Provider: "openai", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "openai/"+DefaultOpenAIModel {
		t.Errorf("name: got %q", p.Name())
	}

	p, err = NewProvider(Config{Provider: "anthropic", APIKey: "test-key", Model: "claude-3-haiku"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "anthropic/claude-3-haiku" {
		t.Errorf("name: got %q", p.Name())
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization: got %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json response format, got %+v", req.ResponseFormat)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"location": "Denver, CO"}`}},
			},
		}); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	p := &openaiProvider{apiKey: "test-key", model: "gpt-4o-mini", baseURL: server.URL}
	got, err := p.Complete(context.Background(), "parse this", CompletionOpts{
		System: "you are a parser",
		Format: "json",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"location": "Denver, CO"}` {
		t.Errorf("got %q", got)
	}
}

func TestOpenAIProviderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := &openaiProvider{apiKey: "test-key", model: "gpt-4o-mini", baseURL: server.URL}
	_, err := p.Complete(context.Background(), "parse this", CompletionOpts{})
	if err == nil {
		t.Fatal("expected error for 429 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestAnthropicProviderComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key: got %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != anthropicVersion {
			t.Errorf("anthropic-version: got %q", got)
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.MaxTokens == 0 {
			t.Error("max_tokens must always be set for anthropic")
		}
		if req.System == "" {
			t.Error("system prompt missing")
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": `{"beds": {"min": 3}}`},
			},
		}); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	p := &anthropicProvider{apiKey: "test-key", model: "claude-3-sonnet-20240229", baseURL: server.URL}
	got, err := p.Complete(context.Background(), "parse this", CompletionOpts{System: "you are a parser"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"beds": {"min": 3}}` {
		t.Errorf("got %q", got)
	}
}

func TestAnthropicProviderEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}}); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	p := &anthropicProvider{apiKey: "test-key", model: "claude-3-sonnet-20240229", baseURL: server.URL}
	if _, err := p.Complete(context.Background(), "parse this", CompletionOpts{}); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestOpenRouterProviderHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("HTTP-Referer"); got == "" {
			t.Error("missing HTTP-Referer header")
		}
		if got := r.Header.Get("X-Title"); got != "Hearth" {
			t.Errorf("X-Title: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "{}"}},
			},
		}); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	p := &openrouterProvider{apiKey: "test-key", model: "anthropic/claude-3-haiku", baseURL: server.URL}
	got, err := p.Complete(context.Background(), "parse this", CompletionOpts{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "{}" {
		t.Errorf("got %q", got)
	}
}
