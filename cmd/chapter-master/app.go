package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/config"
	"github.com/storyforge/chapter-master/internal/consistency"
	"github.com/storyforge/chapter-master/internal/factory"
	"github.com/storyforge/chapter-master/internal/history"
	"github.com/storyforge/chapter-master/internal/status"
	"github.com/storyforge/chapter-master/internal/templates"
)

// app bundles the resolved dependencies for one CLI invocation. The
// same wiring as the MCP server, minus the server itself.
type app struct {
	projectRoot string
	store       bible.Store
	factory     *factory.Factory
	checker     *consistency.Checker
	reporter    *status.Reporter
	hist        *history.Log
}

// newApp resolves all dependencies. The generation service is optional;
// the run history is best-effort.
func newApp() (*app, error) {
	settings := config.Load()
	store := bible.NewFileStore()

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating template renderer: %w", err)
	}

	var gen ai.Generator
	client, err := ai.NewClient(settings.APIKey, settings.Model, settings.MaxTokens, settings.RequestTimeout)
	switch {
	case err == nil:
		gen = client
	case errors.Is(err, ai.ErrNotConfigured):
		log.Printf("WARNING: generation service not configured — running without enrichment")
	default:
		return nil, fmt.Errorf("creating generation client: %w", err)
	}

	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	return &app{
		projectRoot: projectRoot,
		store:       store,
		factory:     factory.New(store, renderer, gen),
		checker:     consistency.NewChecker(store, renderer, gen),
		reporter:    status.NewReporter(store),
		hist:        history.OpenBestEffort(projectRoot),
	}, nil
}

// close releases the app's resources.
func (a *app) close() {
	if err := a.hist.Close(); err != nil {
		log.Printf("WARNING: run history close: %v", err)
	}
}

// envelope is the structured result shape every operation produces.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// emit prints an operation outcome, honoring --json, and returns an
// error only to drive the process exit code. Missing-bible errors get
// the fixed advisory message.
func emit(message string, data any, opErr error) error {
	if opErr != nil {
		msg := opErr.Error()
		if errors.Is(opErr, bible.ErrNotFound) {
			msg = "No story bible found. Run 'chapter-master parse-premise' first."
		}
		if jsonOutput {
			printJSON(envelope{Success: false, Message: msg, Error: opErr.Error()})
			return errSilent
		}
		return errors.New(msg)
	}

	if jsonOutput {
		printJSON(envelope{Success: true, Message: message, Data: data})
		return nil
	}
	fmt.Println(message)
	return nil
}

// errSilent signals a failure already reported as JSON.
var errSilent = errors.New("operation failed")

func printJSON(e envelope) {
	out, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
