// Package prompts implements the MCP prompt handlers for story planning.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the story-start MCP prompt.
// It guides the AI to create a story bible and begin planning a novel.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("story-start",
		mcp.WithPromptDescription(
			"Start planning a new novel. "+
				"This will guide you through parsing your premise into a story bible, "+
				"creating your main characters, and planning your first chapters.",
		),
		mcp.WithArgument("premise",
			mcp.ArgumentDescription("Your novel's premise — a paragraph or two describing the story"),
		),
		mcp.WithArgument("author",
			mcp.ArgumentDescription("Author name for the story bible metadata"),
		),
	)
}

// Handle processes the story-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	premise := ""
	author := ""
	if args := req.Params.Arguments; args != nil {
		premise = args["premise"]
		author = args["author"]
	}

	premiseStep := "1. Ask me for my novel's premise — a paragraph or two describing the story\n" +
		"2. Run `story_parse_premise` with my premise"
	if premise != "" {
		premiseStep = fmt.Sprintf("1. Run `story_parse_premise` with this premise:\n   %q", premise)
	}
	if author != "" {
		premiseStep += fmt.Sprintf(" (author: %s)", author)
	}

	return &mcp.GetPromptResult{
		Description: "Start planning a new novel",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to start planning a new novel.\n\n"+
						"Please:\n"+
						"%s\n"+
						"3. Review the generated story bible with me (title, genre, themes)\n"+
						"4. Run `story_create_character` for my protagonist and antagonist with generate_profile=true\n"+
						"5. Run `story_generate_chapter` to plan the opening chapter\n"+
						"6. Show me `story_status` so I can see where the project stands\n\n"+
						"Guide me step by step and ask before moving to the next stage.",
					premiseStep,
				)),
			},
		},
	}, nil
}
