// Package factory implements the element factories: premise parser,
// character creator, and chapter/scene generator. Each factory assembles
// a baseline element from caller input, optionally enriches it through
// the generation service, validates it against its schema contract, and
// appends it to the story bible through the store's transact chokepoint.
//
// Enrichment failure is never fatal: a response that cannot be parsed
// degrades to the unenriched baseline with a logged warning. The one
// load-bearing generation call is the premise analysis — see premise.go.
package factory

import (
	"errors"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/templates"
)

// ErrNoPremise indicates the story bible exists but has no premise,
// which should not happen for a bible created by parse-premise.
var ErrNoPremise = errors.New("story bible has no premise")

// Factory bundles the dependencies shared by all element factories.
// gen may be nil: enrichment is skipped and baselines are used.
type Factory struct {
	store    bible.Store
	renderer templates.Renderer
	gen      ai.Generator
}

// New creates a Factory. Pass gen as nil when no generation service
// is configured.
func New(store bible.Store, renderer templates.Renderer, gen ai.Generator) *Factory {
	return &Factory{store: store, renderer: renderer, gen: gen}
}

// Result is what every factory operation returns on success: a
// human-readable message, the structured element(s), the enrichment
// outcome, and the paths of documents written.
type Result struct {
	Message    string
	Data       any
	Enrichment ai.Enrichment
	Paths      []string
}
