package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/config"
	"github.com/storyforge/chapter-master/internal/factory"
	"github.com/storyforge/chapter-master/internal/history"
)

// GenerateChapterTool handles the story_generate_chapter MCP tool.
type GenerateChapterTool struct {
	factory *factory.Factory
	hist    *history.Log
}

// NewGenerateChapterTool creates a GenerateChapterTool with its dependencies.
func NewGenerateChapterTool(f *factory.Factory, hist *history.Log) *GenerateChapterTool {
	return &GenerateChapterTool{factory: f, hist: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateChapterTool) Definition() mcp.Tool {
	return mcp.NewTool("story_generate_chapter",
		mcp.WithDescription(
			"Create a chapter plan in the story bible (or update one by chapter_id), "+
				"optionally with placeholder scenes, and write chapters/chapter-NN.md. "+
				"Requires: story_parse_premise must have been run first.",
		),
		mcp.WithNumber("chapter_id",
			mcp.Description("Existing chapter ID to update instead of creating a new chapter"),
		),
		mcp.WithNumber("chapter_number",
			mcp.Description("Chapter number (default: next after the highest existing)"),
		),
		mcp.WithString("title",
			mcp.Description("Chapter title (default: \"Chapter N\")"),
		),
		mcp.WithString("purpose",
			mcp.Description("What this chapter accomplishes in the story"),
		),
		mcp.WithNumber("target_word_count",
			mcp.Description(fmt.Sprintf("Target chapter length in words (default: %d)", config.DefaultChapterWordCount)),
		),
		mcp.WithBoolean("generate_scenes",
			mcp.Description("Create placeholder scenes for the chapter (default: true)"),
		),
		mcp.WithNumber("scene_count",
			mcp.Description(fmt.Sprintf("Number of scenes to create (default: %d)", config.DefaultSceneCount)),
		),
		mcp.WithString("characters",
			mcp.Description("Comma-separated character IDs appearing in the chapter, e.g. \"1,3\""),
		),
		mcp.WithString("plot_threads",
			mcp.Description("Comma-separated plot thread IDs this chapter advances"),
		),
		mcp.WithString("conflicts",
			mcp.Description("Comma-separated conflicts driving the chapter"),
		),
	)
}

// Handle processes the story_generate_chapter tool call.
func (t *GenerateChapterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	result, err := t.factory.GenerateChapter(ctx, projectRoot, factory.ChapterInput{
		ChapterID:       intArg(req, "chapter_id", 0),
		ChapterNumber:   intArg(req, "chapter_number", 0),
		Title:           req.GetString("title", ""),
		Purpose:         req.GetString("purpose", ""),
		TargetWordCount: intArg(req, "target_word_count", 0),
		GenerateScenes:  boolArg(req, "generate_scenes", true),
		SceneCount:      intArg(req, "scene_count", 0),
		Characters:      intListArg(req, "characters"),
		PlotThreads:     intListArg(req, "plot_threads"),
		Conflicts:       stringListArg(req, "conflicts"),
	})
	if err != nil {
		return errorResult(err), nil
	}

	t.hist.Record("generate-chapter", result.Message, 0, 0)

	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n\nFiles written:\n")
	for _, p := range result.Paths {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	return mcp.NewToolResultText(b.String()), nil
}
