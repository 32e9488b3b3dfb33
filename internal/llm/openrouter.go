package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// openrouterProvider implements Provider using the OpenRouter API
// (OpenAI-compatible wire format, extra attribution headers).
type openrouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  http.Client
}

func (o *openrouterProvider) Name() string {
	return "openrouter/" + o.model
}

func (o *openrouterProvider) Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
	req := buildChatRequest(o.model, prompt, opts)

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := o.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("HTTP-Referer", "https://github.com/hearthlabs/hearth")
	httpReq.Header.Set("X-Title", "Hearth")

	return doChatRequest(&o.client, httpReq, "openrouter")
}
