// Package mcp provides a Model Context Protocol server for Hearth.
//
// It exposes the interpretation pipeline as MCP tools so an agent can
// drive a listing search conversationally: interpret a turn, search
// with structured filters, and inspect or reset session context.
// Stdio transport only.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hearthlabs/hearth/internal/interpret"
	"github.com/hearthlabs/hearth/internal/schema"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Service *interpret.Service
	Version string // version string for MCP server info
}

// NewServer creates a configured MCP server with all Hearth tools.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"Hearth",
		ver,
		server.WithToolCapabilities(false),
	)

	registerQueryTool(s, cfg.Service)
	registerSearchTool(s, cfg.Service)
	registerContextGetTool(s, cfg.Service)
	registerContextResetTool(s, cfg.Service)

	return s
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerQueryTool(s *server.MCPServer, svc *interpret.Service) {
	tool := mcp.NewTool("hearth_query",
		mcp.WithDescription("Interpret one turn of a natural-language home search (e.g. \"3-bed homes in Denver under 650k\"). Filters accumulate per session across calls; returns the merged filters, matching listings, a summary, and suggested refinements."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's message for this turn"),
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session identifier scoping the conversation context"),
		),
		mcp.WithBoolean("new_query",
			mcp.Description("Set true to discard the session's accumulated filters before this turn (default: false)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError("message is required"), nil
		}
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		isNew := req.GetBool("new_query", false)

		res, err := svc.Interpret(ctx, sessionID, message, isNew)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("interpret error: %v", err)), nil
		}

		payload := map[string]any{
			"sessionId":           res.SessionID,
			"assistantSummary":    res.Summary,
			"filters":             res.Filters,
			"clarifyingQuestions": res.ClarifyingQuestions,
			"refinements":         res.Refinements,
			"listings":            res.Page.Items,
			"total":               res.Page.Total,
			"page":                res.Page.Page,
			"pageSize":            res.Page.PageSize,
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerSearchTool(s *server.MCPServer, svc *interpret.Service) {
	tool := mcp.NewTool("hearth_search",
		mcp.WithDescription("Search listings with already-structured filters, bypassing language interpretation and session state. Filters use the canonical shape: location, price/beds/baths ranges, propertyTypes, daysOnMarket, keywords, sortBy, page."),
		mcp.WithString("filters",
			mcp.Required(),
			mcp.Description(`Filter set as a JSON object, e.g. {"location":"Denver, CO","price":{"max":650000},"beds":{"min":3}}`),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("filters")
		if err != nil {
			return mcp.NewToolResultError("filters is required"), nil
		}

		var f schema.FilterSet
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid filters JSON: %v", err)), nil
		}

		page, err := svc.Search(ctx, f)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search error: %v", err)), nil
		}

		data, _ := json.MarshalIndent(page, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerContextGetTool(s *server.MCPServer, svc *interpret.Service) {
	tool := mcp.NewTool("hearth_context_get",
		mcp.WithDescription("Return the accumulated filter context for a session."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session identifier"),
		),
	)

	s.AddTool(tool, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		data, _ := json.MarshalIndent(svc.Context(sessionID), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	})
}

func registerContextResetTool(s *server.MCPServer, svc *interpret.Service) {
	tool := mcp.NewTool("hearth_context_reset",
		mcp.WithDescription("Clear the accumulated filter context for a session."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session identifier"),
		),
	)

	s.AddTool(tool, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError("session_id is required"), nil
		}
		svc.Reset(sessionID)
		return mcp.NewToolResultText(fmt.Sprintf("context reset for session %s", sessionID)), nil
	})
}
