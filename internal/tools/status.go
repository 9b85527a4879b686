package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/status"
)

// StatusTool handles the story_status MCP tool.
type StatusTool struct {
	reporter *status.Reporter
}

// NewStatusTool creates a StatusTool with its dependencies.
func NewStatusTool(r *status.Reporter) *StatusTool {
	return &StatusTool{reporter: r}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("story_status",
		mcp.WithDescription(
			"Show the project's progress: per-collection completion counts, the "+
				"weighted overall percentage, word count targets, and the recommended "+
				"next action. Read-only. "+
				"Requires: story_parse_premise must have been run first.",
		),
		mcp.WithString("format",
			mcp.Description("Output format (default: summary)"),
			mcp.Enum("summary", "detailed", "table"),
		),
		mcp.WithBoolean("include_chapters",
			mcp.Description("Include per-chapter rows (default: true)"),
		),
		mcp.WithBoolean("include_characters",
			mcp.Description("Include per-character rows (default: true)"),
		),
		mcp.WithBoolean("include_plot_threads",
			mcp.Description("Include per-thread rows (default: true)"),
		),
		mcp.WithBoolean("include_word_counts",
			mcp.Description("Include word count statistics (default: true)"),
		),
		mcp.WithBoolean("include_next_steps",
			mcp.Description("Include the recommended next action (default: true)"),
		),
	)
}

// Handle processes the story_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := status.Format(req.GetString("format", string(status.FormatSummary)))
	if err := status.ValidateFormat(format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	snap, err := t.reporter.Snapshot(projectRoot, status.Include{
		Chapters:    boolArg(req, "include_chapters", true),
		Characters:  boolArg(req, "include_characters", true),
		PlotThreads: boolArg(req, "include_plot_threads", true),
		WordCounts:  boolArg(req, "include_word_counts", true),
		NextSteps:   boolArg(req, "include_next_steps", true),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return mcp.NewToolResultText(status.Render(snap, format)), nil
}
