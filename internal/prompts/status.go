package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the story-status MCP prompt.
// It asks the AI to summarize the project and recommend what to do next.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("story-status",
		mcp.WithPromptDescription(
			"Review your novel's progress: completion percentages, chapter states, "+
				"outstanding consistency issues, and the recommended next step.",
		),
	)
}

// Handle processes the story-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Review novel progress",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Show me where my novel stands.\n\n" +
						"Please:\n" +
						"1. Run `story_status` with format='detailed'\n" +
						"2. Run `story_check_consistency` (no auto-fix) and summarize any issues by severity\n" +
						"3. Run `story_next_chapter` and explain the recommendation\n" +
						"4. Give me a short, plain-language summary: what's done, what's blocking, what to do next",
				),
			},
		},
	}, nil
}
