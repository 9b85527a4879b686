// Package ai abstracts the external generation service: produce
// structured or free text from a prompt, given a role and an optional
// output shape. The rest of the system consumes it as a black box —
// enrichment callers degrade gracefully when a response cannot be
// parsed, load-bearing callers propagate the failure.
package ai

import (
	"context"
	"errors"
)

// Role selects the system prompt for a generation call.
type Role string

const (
	// RoleMain is used for creative generation: descriptions, arcs,
	// conflicts, scene beats.
	RoleMain Role = "main"
	// RoleResearch is used for analytical tasks: premise analysis,
	// consistency issue triage.
	RoleResearch Role = "research"
)

// ErrNotConfigured indicates no generation service is available
// (no API key). Callers treat this like any other degraded enrichment.
var ErrNotConfigured = errors.New("generation service not configured: set ANTHROPIC_API_KEY")

// Generator is the generation-service contract. Calls are synchronous
// and block the invoking operation until the service resolves or times
// out; no retries are performed.
type Generator interface {
	// GenerateText returns free-form text for the prompt.
	GenerateText(ctx context.Context, role Role, prompt string) (string, error)

	// GenerateJSON asks for a JSON object and unmarshals it into out.
	// A response that cannot be parsed into out's shape is an error —
	// whether that error is fatal is the caller's decision.
	GenerateJSON(ctx context.Context, role Role, prompt string, out any) error
}

// --- Enrichment outcome ---

// Enrichment is the outcome of an optional AI enrichment step: either
// the enrichment was applied, or it degraded with a reason. Factories
// must handle the degraded branch explicitly — enrichment failure is
// never fatal.
type Enrichment struct {
	Applied bool
	Reason  string
}

// Applied marks an enrichment as successfully applied.
func Applied() Enrichment {
	return Enrichment{Applied: true}
}

// Degraded marks an enrichment as skipped or failed, with the reason.
func Degraded(reason string) Enrichment {
	return Enrichment{Reason: reason}
}

// DegradedErr marks an enrichment as failed with the error's message.
func DegradedErr(err error) Enrichment {
	return Enrichment{Reason: err.Error()}
}
