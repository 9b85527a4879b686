// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on
// abstractions. No business logic lives here — only wiring.
package server

import (
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/config"
	"github.com/storyforge/chapter-master/internal/consistency"
	"github.com/storyforge/chapter-master/internal/factory"
	"github.com/storyforge/chapter-master/internal/history"
	"github.com/storyforge/chapter-master/internal/prompts"
	"github.com/storyforge/chapter-master/internal/resources"
	"github.com/storyforge/chapter-master/internal/status"
	"github.com/storyforge/chapter-master/internal/templates"
	"github.com/storyforge/chapter-master/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the run history's database
// connection and must be called on shutdown (typically via defer).
// It is always non-nil and safe to call even if history init failed.
func New() (*server.MCPServer, func(), error) {
	// --- Create shared dependencies ---

	settings := config.Load()
	store := bible.NewFileStore()

	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, noop, fmt.Errorf("creating template renderer: %w", err)
	}

	// The generation service is optional: without an API key the
	// factories produce unenriched baselines and the consistency
	// checker skips its advisory analysis.
	var gen ai.Generator
	client, err := ai.NewClient(settings.APIKey, settings.Model, settings.MaxTokens, settings.RequestTimeout)
	switch {
	case err == nil:
		gen = client
	case errors.Is(err, ai.ErrNotConfigured):
		log.Printf("WARNING: generation service not configured — running without enrichment")
	default:
		return nil, noop, fmt.Errorf("creating generation client: %w", err)
	}

	fac := factory.New(store, renderer, gen)
	checker := consistency.NewChecker(store, renderer, gen)
	reporter := status.NewReporter(store)

	// Run history is an independent subsystem: if it fails to open,
	// story tools continue working without a log.
	cleanup := noop
	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, noop, fmt.Errorf("finding project root: %w", err)
	}
	hist := history.OpenBestEffort(projectRoot)
	if hist != nil {
		cleanup = func() {
			if err := hist.Close(); err != nil {
				log.Printf("WARNING: run history close: %v", err)
			}
		}
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"chapter-master",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register story tools ---

	parsePremise := tools.NewParsePremiseTool(fac, hist)
	s.AddTool(parsePremise.Definition(), parsePremise.Handle)

	createCharacter := tools.NewCreateCharacterTool(fac, hist)
	s.AddTool(createCharacter.Definition(), createCharacter.Handle)

	generateChapter := tools.NewGenerateChapterTool(fac, hist)
	s.AddTool(generateChapter.Definition(), generateChapter.Handle)

	checkConsistency := tools.NewCheckConsistencyTool(checker, hist)
	s.AddTool(checkConsistency.Definition(), checkConsistency.Handle)

	statusTool := tools.NewStatusTool(reporter)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	nextChapter := tools.NewNextChapterTool(reporter)
	s.AddTool(nextChapter.Definition(), nextChapter.Handle)

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(reporter)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when history
// is disabled or hasn't been initialized.
func noop() {}

// serverInstructions is the guidance the host shows the AI about how
// to use this server.
func serverInstructions() string {
	return `Chapter Master is a novel-planning server built around a story bible:
a single JSON document holding the premise, outline, characters, chapters,
scenes, and plot threads of one novel.

Workflow:
1. story_parse_premise — always first; creates the story bible.
2. story_create_character — build the cast.
3. story_generate_chapter — plan chapters and their scenes.
4. story_check_consistency — find structural problems; optionally auto-fix.
5. story_status / story_next_chapter — see progress and what to do next.

Every mutation is written straight to story-bible/story-bible.json plus
human-readable Markdown mirrors. There is no undo; prefer small steps
and check story_status between them.`
}
