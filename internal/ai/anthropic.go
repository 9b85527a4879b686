package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// System prompts per role. The main role writes; the research role
// analyzes structure and never invents new story content.
const (
	mainSystemPrompt = "You are a story development assistant for a novelist. " +
		"You produce vivid, concrete, internally consistent story material: " +
		"character psychology, arcs, conflicts, scene purposes, plot advancement. " +
		"You write planning material, not prose."

	researchSystemPrompt = "You are a story structure analyst. " +
		"You examine story planning material and answer with precise, " +
		"structural observations. You never invent new story content."
)

// Client is the Anthropic-backed Generator.
type Client struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
}

// NewClient creates an Anthropic-backed generation client.
// Returns ErrNotConfigured when no API key is available.
func NewClient(apiKey, model string, maxTokens int64, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// GenerateText sends one message and returns the text of the reply.
// A single synchronous call — no retries. A failed call fails the
// operation it is embedded in; the caller decides whether that is fatal.
func (c *Client) GenerateText(ctx context.Context, role Role, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(role)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("generation call: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("generation call: empty response")
	}
	content := message.Content[0]
	if content.Type != "text" {
		return "", fmt.Errorf("generation call: unexpected content type %q", content.Type)
	}
	return content.Text, nil
}

// GenerateJSON asks for a single JSON object and unmarshals it into out.
func (c *Client) GenerateJSON(ctx context.Context, role Role, prompt string, out any) error {
	full := prompt + "\n\nRespond with ONLY a single JSON object. No prose, no code fences."

	text, err := c.GenerateText(ctx, role, full)
	if err != nil {
		return err
	}

	payload := extractJSON(text)
	if payload == "" {
		return fmt.Errorf("parsing generation response: no JSON object found")
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("parsing generation response: %w", err)
	}
	return nil
}

// systemPrompt maps a role to its system prompt.
func systemPrompt(role Role) string {
	if role == RoleResearch {
		return researchSystemPrompt
	}
	return mainSystemPrompt
}

// extractJSON pulls the outermost JSON object out of a model reply,
// tolerating stray prose or code fences around it.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
