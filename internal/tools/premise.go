package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/config"
	"github.com/storyforge/chapter-master/internal/factory"
	"github.com/storyforge/chapter-master/internal/history"
)

// ParsePremiseTool handles the story_parse_premise MCP tool.
// It is the entry point of every project: it creates the story bible.
type ParsePremiseTool struct {
	factory *factory.Factory
	hist    *history.Log
}

// NewParsePremiseTool creates a ParsePremiseTool with its dependencies.
func NewParsePremiseTool(f *factory.Factory, hist *history.Log) *ParsePremiseTool {
	return &ParsePremiseTool{factory: f, hist: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *ParsePremiseTool) Definition() mcp.Tool {
	return mcp.NewTool("story_parse_premise",
		mcp.WithDescription(
			"Parse a novel premise and create the story bible. "+
				"This is the first step of every project: it analyzes the premise "+
				"(title, genre, themes, target audience), creates story-bible/story-bible.json, "+
				"and optionally seeds a structural outline. "+
				"Refuses to overwrite an existing story bible.",
		),
		mcp.WithString("premise",
			mcp.Description("The premise text. Either this or premise_file is required."),
		),
		mcp.WithString("premise_file",
			mcp.Description("Path to a file containing the premise text"),
		),
		mcp.WithString("author",
			mcp.Description("Author name for the story bible metadata"),
		),
		mcp.WithNumber("target_word_count",
			mcp.Description(fmt.Sprintf("Target length of the novel in words (default: %d)", config.DefaultTargetWordCount)),
		),
		mcp.WithBoolean("generate_outline",
			mcp.Description("Seed an initial outline alongside the premise (default: true)"),
		),
		mcp.WithString("structure_type",
			mcp.Description("Outline structure"),
			mcp.Enum("three-act", "hero-journey", "save-the-cat", "seven-point", "genre-specific"),
		),
	)
}

// Handle processes the story_parse_premise tool call.
func (t *ParsePremiseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("premise", "")
	if file := req.GetString("premise_file", ""); text == "" && file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reading premise file: %v", err)), nil
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'premise' or 'premise_file' is required"), nil
	}

	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	in := factory.PremiseInput{
		Text:            text,
		Author:          req.GetString("author", ""),
		TargetWordCount: intArg(req, "target_word_count", config.DefaultTargetWordCount),
		GenerateOutline: boolArg(req, "generate_outline", true),
		StructureType:   bible.StructureType(req.GetString("structure_type", "")),
	}
	if in.StructureType != "" {
		if err := bible.ValidateStructureType(in.StructureType); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	result, err := t.factory.ParsePremise(ctx, projectRoot, in)
	if err != nil {
		return errorResult(err), nil
	}

	t.hist.Record("parse-premise", result.Message, 0, 0)

	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n\nFiles written:\n")
	for _, p := range result.Paths {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	b.WriteString("\nNext: create your main characters with story_create_character.")
	return mcp.NewToolResultText(b.String()), nil
}
