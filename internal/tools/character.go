package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/factory"
	"github.com/storyforge/chapter-master/internal/history"
)

// CreateCharacterTool handles the story_create_character MCP tool.
type CreateCharacterTool struct {
	factory *factory.Factory
	hist    *history.Log
}

// NewCreateCharacterTool creates a CreateCharacterTool with its dependencies.
func NewCreateCharacterTool(f *factory.Factory, hist *history.Log) *CreateCharacterTool {
	return &CreateCharacterTool{factory: f, hist: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateCharacterTool) Definition() mcp.Tool {
	return mcp.NewTool("story_create_character",
		mcp.WithDescription(
			"Create a character in the story bible and write its Markdown profile "+
				"to characters/<name>.md. Optionally enriches the character with a "+
				"generated biography, psychology, arc, and voice. "+
				"Requires: story_parse_premise must have been run first.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Character name"),
		),
		mcp.WithString("character_type",
			mcp.Description("Narrative role (default: supporting)"),
			mcp.Enum("protagonist", "antagonist", "supporting", "minor"),
		),
		mcp.WithString("description",
			mcp.Description("Short description of the character"),
		),
		mcp.WithBoolean("generate_profile",
			mcp.Description("Generate a biography and psychology profile"),
		),
		mcp.WithBoolean("generate_arc",
			mcp.Description("Generate a character arc"),
		),
		mcp.WithBoolean("generate_voice",
			mcp.Description("Generate a voice and speech-pattern profile"),
		),
	)
}

// Handle processes the story_create_character tool call.
func (t *CreateCharacterTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	charType := bible.CharacterType(req.GetString("character_type", string(bible.CharSupporting)))
	if err := bible.ValidateCharacterType(charType); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	result, err := t.factory.CreateCharacter(ctx, projectRoot, factory.CharacterInput{
		Name:            name,
		CharacterType:   charType,
		Description:     req.GetString("description", ""),
		GenerateProfile: boolArg(req, "generate_profile", false),
		GenerateArc:     boolArg(req, "generate_arc", false),
		GenerateVoice:   boolArg(req, "generate_voice", false),
	})
	if err != nil {
		return errorResult(err), nil
	}

	t.hist.Record("create-character", result.Message, 0, 0)

	var b strings.Builder
	b.WriteString(result.Message)
	b.WriteString("\n\nFiles written:\n")
	for _, p := range result.Paths {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	return mcp.NewToolResultText(b.String()), nil
}
