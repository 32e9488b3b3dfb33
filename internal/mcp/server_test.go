package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hearthlabs/hearth/internal/interpret"
	"github.com/hearthlabs/hearth/internal/listings"
	"github.com/hearthlabs/hearth/internal/parser"
	"github.com/hearthlabs/hearth/internal/schema"
	"github.com/hearthlabs/hearth/internal/session"
)

func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	svc := interpret.New(session.NewMemoryStore(), parser.NewRuleBased(), listings.NewStaticProvider(), nil)
	return NewServer(ServerConfig{Service: svc, Version: "test"})
}

// callTool invokes an MCP tool through the JSON-RPC layer, the same
// path a real client takes.
func callTool(t *testing.T, srv *server.MCPServer, name string, args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()

	result := srv.HandleMessage(context.Background(), mustMarshal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      name,
			"arguments": args,
		},
	}))

	respBytes, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, string(respBytes))
	}
	if resp.Error != nil {
		t.Fatalf("JSON-RPC error: %d %s", resp.Error.Code, resp.Error.Message)
	}

	callResult := &mcplib.CallToolResult{IsError: resp.Result.IsError}
	for _, c := range resp.Result.Content {
		if c.Type == "text" {
			callResult.Content = append(callResult.Content, mcplib.NewTextContent(c.Text))
		}
	}
	return callResult
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func getTextContent(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content found")
	return ""
}

func TestNewServer(t *testing.T) {
	if srv := newTestServer(t); srv == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestQueryTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "hearth_query", map[string]interface{}{
		"message":    "3-bed homes in Denver under 650k",
		"session_id": "mcp-1",
	})
	if result.IsError {
		t.Fatalf("tool errored: %s", getTextContent(t, result))
	}

	var payload struct {
		SessionID string           `json:"sessionId"`
		Filters   schema.FilterSet `json:"filters"`
		Total     int              `json:"total"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.SessionID != "mcp-1" || payload.Filters.Location != "Denver, CO" || payload.Total != 1 {
		t.Errorf("payload: %+v", payload)
	}
}

func TestQueryToolAccumulatesContext(t *testing.T) {
	srv := newTestServer(t)

	callTool(t, srv, "hearth_query", map[string]interface{}{
		"message":    "homes in Denver",
		"session_id": "mcp-2",
	})
	result := callTool(t, srv, "hearth_query", map[string]interface{}{
		"message":    "under 600k",
		"session_id": "mcp-2",
	})

	var payload struct {
		Filters schema.FilterSet `json:"filters"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.Filters.Location != "Denver, CO" {
		t.Errorf("location lost across turns: %+v", payload.Filters)
	}
	if payload.Filters.Price == nil || *payload.Filters.Price.Max != 600000 {
		t.Errorf("price: %+v", payload.Filters.Price)
	}
}

func TestQueryToolNewQueryResets(t *testing.T) {
	srv := newTestServer(t)

	callTool(t, srv, "hearth_query", map[string]interface{}{
		"message":    "homes in Denver under 600k",
		"session_id": "mcp-4",
	})
	// A JSON boolean, as a real client sends it.
	result := callTool(t, srv, "hearth_query", map[string]interface{}{
		"message":    "condos in Portland",
		"session_id": "mcp-4",
		"new_query":  true,
	})

	var payload struct {
		Filters schema.FilterSet `json:"filters"`
	}
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.Filters.Location != "Portland, OR" {
		t.Errorf("location: %+v", payload.Filters)
	}
	if payload.Filters.Price != nil {
		t.Errorf("price survived new_query reset: %+v", payload.Filters.Price)
	}
}

func TestQueryToolRequiresArguments(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "hearth_query", map[string]interface{}{"session_id": "x"})
	if !result.IsError {
		t.Error("expected error without message")
	}
	result = callTool(t, srv, "hearth_query", map[string]interface{}{"message": "hi"})
	if !result.IsError {
		t.Error("expected error without session_id")
	}
}

func TestSearchTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "hearth_search", map[string]interface{}{
		"filters": `{"location":"San Diego, CA","sortBy":"price_asc"}`,
	})
	if result.IsError {
		t.Fatalf("tool errored: %s", getTextContent(t, result))
	}

	var page schema.ResultPage
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &page); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	if page.Total != 3 || page.Items[0].ID != "sd-2002" {
		t.Errorf("got total %d first %s", page.Total, page.Items[0].ID)
	}

	result = callTool(t, srv, "hearth_search", map[string]interface{}{"filters": "{not json"})
	if !result.IsError {
		t.Error("expected error for invalid filters JSON")
	}
}

func TestContextTools(t *testing.T) {
	srv := newTestServer(t)

	callTool(t, srv, "hearth_query", map[string]interface{}{
		"message":    "condos in Portland",
		"session_id": "mcp-3",
	})

	result := callTool(t, srv, "hearth_context_get", map[string]interface{}{"session_id": "mcp-3"})
	var filters schema.FilterSet
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &filters); err != nil {
		t.Fatalf("decoding filters: %v", err)
	}
	if filters.Location != "Portland, OR" {
		t.Errorf("context: %+v", filters)
	}

	result = callTool(t, srv, "hearth_context_reset", map[string]interface{}{"session_id": "mcp-3"})
	if result.IsError || !strings.Contains(getTextContent(t, result), "mcp-3") {
		t.Errorf("reset result: %v", result)
	}

	result = callTool(t, srv, "hearth_context_get", map[string]interface{}{"session_id": "mcp-3"})
	var after schema.FilterSet
	if err := json.Unmarshal([]byte(getTextContent(t, result)), &after); err != nil {
		t.Fatalf("decoding filters: %v", err)
	}
	if after.Location != "" {
		t.Errorf("context survived reset: %+v", after)
	}
}
