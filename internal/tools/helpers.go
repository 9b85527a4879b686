// Package tools implements the MCP tool handlers for story planning.
//
// Each tool is a struct that receives its dependencies via constructor
// (DIP) and exposes Definition() plus Handle() compatible with mcp-go's
// CallToolRequest signature.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on interfaces (bible.Store, templates.Renderer), not concretions
// - OCP: new tools are added without modifying existing ones
package tools

import (
	"errors"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
)

// noBibleAdvice is the fixed message every tool except parse-premise
// returns when no story bible exists yet.
const noBibleAdvice = "No story bible found. Run story_parse_premise with your premise first."

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// intListArg parses a comma-separated string of IDs ("1,2,3").
// Non-numeric entries are skipped.
func intListArg(req mcp.CallToolRequest, key string) []int {
	raw := req.GetString(key, "")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n > 0 {
			ids = append(ids, n)
		}
	}
	return ids
}

// stringListArg parses a comma-separated string list.
func stringListArg(req mcp.CallToolRequest, key string) []string {
	raw := req.GetString(key, "")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			items = append(items, s)
		}
	}
	return items
}

// errorResult converts an operation error into a tool error result,
// translating a missing story bible into the fixed advisory message.
func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, bible.ErrNotFound) {
		return mcp.NewToolResultError(noBibleAdvice)
	}
	return mcp.NewToolResultError(err.Error())
}
