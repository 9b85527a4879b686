package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/status"
)

// NextChapterTool handles the story_next_chapter MCP tool.
type NextChapterTool struct {
	reporter *status.Reporter
}

// NewNextChapterTool creates a NextChapterTool with its dependencies.
func NewNextChapterTool(r *status.Reporter) *NextChapterTool {
	return &NextChapterTool{reporter: r}
}

// Definition returns the MCP tool definition for registration.
func (t *NextChapterTool) Definition() mcp.Tool {
	return mcp.NewTool("story_next_chapter",
		mcp.WithDescription(
			"Recommend the chapter to work on next. Among chapters matching the "+
				"filters, in-progress work wins, then revisions, then drafts, ordered "+
				"by priority and chapter number. Read-only. "+
				"Requires: story_parse_premise must have been run first.",
		),
		mcp.WithString("status",
			mcp.Description("Only consider chapters in this status"),
			mcp.Enum("draft", "in-progress", "review", "needs-revision", "completed"),
		),
		mcp.WithString("priority",
			mcp.Description("Only consider chapters with this priority"),
			mcp.Enum("high", "medium", "low"),
		),
		mcp.WithNumber("character_focus",
			mcp.Description("Only consider chapters featuring this character ID"),
		),
		mcp.WithNumber("plot_thread",
			mcp.Description("Only consider chapters advancing this plot thread ID"),
		),
		mcp.WithBoolean("include_scenes",
			mcp.Description("Include the recommended chapter's scenes (default: true)"),
		),
	)
}

// Handle processes the story_next_chapter tool call.
func (t *NextChapterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	rec, err := t.reporter.NextChapter(projectRoot, status.ChapterFilter{
		Status:         bible.Status(req.GetString("status", "")),
		Priority:       bible.Priority(req.GetString("priority", "")),
		CharacterFocus: intArg(req, "character_focus", 0),
		PlotThread:     intArg(req, "plot_thread", 0),
		IncludeScenes:  boolArg(req, "include_scenes", true),
	})
	if err != nil {
		return errorResult(err), nil
	}

	if rec.Chapter == nil {
		return mcp.NewToolResultText(rec.Reason), nil
	}

	var b strings.Builder
	c := rec.Chapter
	fmt.Fprintf(&b, "Work on chapter %d next: %q (id %d, %s, %s priority).\n%s\n",
		c.ChapterNumber, c.Title, c.ID, c.Status, c.Priority, rec.Reason)
	if c.Purpose != "" {
		fmt.Fprintf(&b, "\nPurpose: %s\n", c.Purpose)
	}
	if len(rec.Scenes) > 0 {
		b.WriteString("\nScenes:\n")
		for _, s := range rec.Scenes {
			fmt.Fprintf(&b, "  - %s (%s, %s)\n", s.Title, s.SceneType, s.Status)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
