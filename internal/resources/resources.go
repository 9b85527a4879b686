// Package resources implements MCP resource handlers for story planning.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (story://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/status"
)

// Handler manages story resource endpoints.
type Handler struct {
	reporter *status.Reporter
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(reporter *status.Reporter) *Handler {
	return &Handler{reporter: reporter}
}

// StatusResource returns the MCP resource definition for project status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"story://status",
		"Story Project Status",
		mcp.WithResourceDescription("Current novel progress: completion percentages, chapter states, and the recommended next action"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current project status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	snap, err := h.reporter.Snapshot(projectRoot, status.IncludeAll())
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
