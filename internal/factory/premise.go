package factory

import (
	"context"
	"fmt"
	"strings"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/config"
	"github.com/storyforge/chapter-master/internal/templates"
)

// PremiseInput carries the caller-supplied fields for parse-premise.
type PremiseInput struct {
	Text            string
	Author          string
	TargetWordCount int
	GenerateOutline bool
	StructureType   bible.StructureType
}

// premiseAnalysis is the output shape of the premise analysis call.
type premiseAnalysis struct {
	Title          string   `json:"title"`
	Genre          string   `json:"genre"`
	TargetAudience string   `json:"targetAudience"`
	Themes         []string `json:"themes"`
	Summary        string   `json:"summary"`
}

// ParsePremise creates the story bible from a raw premise. This is the
// only factory that does not require an existing bible — it creates one,
// and refuses to overwrite one that already exists.
//
// When a generation service is configured, the premise analysis is
// load-bearing: its failure fails the whole operation. Without a
// service, a deterministic baseline parse is used instead.
func (f *Factory) ParsePremise(ctx context.Context, projectRoot string, in PremiseInput) (*Result, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("premise text is required")
	}
	if f.store.Exists(projectRoot) {
		return nil, fmt.Errorf("a story bible already exists at %s", bible.BiblePath(projectRoot))
	}

	targetWords := in.TargetWordCount
	if targetWords <= 0 {
		targetWords = config.DefaultTargetWordCount
	}
	structure := in.StructureType
	if structure == "" {
		structure = bible.StructureThreeAct
	}

	analysis, enrichment, err := f.analyzePremise(ctx, text)
	if err != nil {
		return nil, err
	}

	// Assemble the bible and its premise element. The premise content
	// is supplied in full by the caller, so it starts completed.
	b := bible.NewStoryBible(analysis.Title, in.Author, bible.Genre(analysis.Genre), targetWords)

	premise := bible.Premise{
		Element:         bible.NewElement(1, bible.TypePremise, analysis.Title),
		Content:         text,
		Genre:           bible.Genre(analysis.Genre),
		TargetAudience:  analysis.TargetAudience,
		Themes:          analysis.Themes,
		WordCountTarget: targetWords,
	}
	premise.Description = analysis.Summary
	premise.Status = bible.StatusCompleted

	if err := bible.ValidateElement(&premise); err != nil {
		return nil, fmt.Errorf("premise: %w", err)
	}
	b.Premise = &premise

	paths := []string{bible.BiblePath(projectRoot)}

	if in.GenerateOutline {
		outline := buildOutline(analysis.Title, structure)
		if err := bible.ValidateElement(&outline); err != nil {
			return nil, fmt.Errorf("outline: %w", err)
		}
		b.Outline = &outline
	}

	if err := f.store.Save(projectRoot, b); err != nil {
		return nil, err
	}

	// Markdown mirrors.
	premiseDoc, err := f.renderer.Render(templates.Premise, templates.PremiseData{Meta: b.Meta, Premise: b.Premise})
	if err != nil {
		return nil, err
	}
	premisePath := bible.PremisePath(projectRoot)
	if err := bible.WriteDocument(premisePath, premiseDoc); err != nil {
		return nil, err
	}
	paths = append(paths, premisePath)

	if b.Outline != nil {
		outlineDoc, err := f.renderer.Render(templates.Outline, templates.OutlineData{Meta: b.Meta, Outline: b.Outline})
		if err != nil {
			return nil, err
		}
		outlinePath := bible.OutlinePath(projectRoot)
		if err := bible.WriteDocument(outlinePath, outlineDoc); err != nil {
			return nil, err
		}
		paths = append(paths, outlinePath)
	}

	msg := fmt.Sprintf("Story bible created for %q (%s, target %d words).", b.Meta.Title, b.Meta.Genre, targetWords)
	if b.Outline != nil {
		msg += fmt.Sprintf(" Outline initialized with the %s structure.", structure)
	}

	return &Result{
		Message:    msg,
		Data:       b,
		Enrichment: enrichment,
		Paths:      paths,
	}, nil
}

// analyzePremise runs the analysis step. With a generator it is
// load-bearing; without one it falls back to a baseline parse.
func (f *Factory) analyzePremise(ctx context.Context, text string) (premiseAnalysis, ai.Enrichment, error) {
	if f.gen == nil {
		return baselineAnalysis(text), ai.Degraded("generation service not configured"), nil
	}

	var analysis premiseAnalysis
	if err := f.gen.GenerateJSON(ctx, ai.RoleResearch, premiseAnalysisPrompt(text), &analysis); err != nil {
		return premiseAnalysis{}, ai.Enrichment{}, fmt.Errorf("premise analysis: %w", err)
	}

	// Clamp model output to the schema's closed sets.
	analysis.Genre = normalizeGenre(analysis.Genre)
	if strings.TrimSpace(analysis.Title) == "" {
		analysis.Title = baselineTitle(text)
	}
	return analysis, ai.Applied(), nil
}

// baselineAnalysis derives premise metadata without the generation
// service: first line becomes the title, genre defaults to literary.
func baselineAnalysis(text string) premiseAnalysis {
	return premiseAnalysis{
		Title: baselineTitle(text),
		Genre: string(bible.GenreLiterary),
	}
}

// baselineTitle takes the first line of the premise, capped at 80 runes.
func baselineTitle(text string) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(strings.TrimRight(line, "."))
	if line == "" {
		return "Untitled Novel"
	}
	runes := []rune(line)
	if len(runes) > 80 {
		line = string(runes[:80])
	}
	return line
}

// normalizeGenre maps loose model output onto the nine fixed genres,
// defaulting to literary-fiction.
func normalizeGenre(g string) string {
	s := strings.ToLower(strings.TrimSpace(g))
	s = strings.ReplaceAll(s, " ", "-")
	if bible.ValidateGenre(bible.Genre(s)) == nil {
		return s
	}
	switch s {
	case "sci-fi", "scifi":
		return string(bible.GenreSciFi)
	case "historical":
		return string(bible.GenreHistorical)
	case "literary", "fiction":
		return string(bible.GenreLiterary)
	case "ya":
		return string(bible.GenreYoungAdult)
	}
	return string(bible.GenreLiterary)
}

// buildOutline assembles the initial outline for the chosen structure.
// Only the three-act structure seeds named acts; the other structures
// start empty and are shaped as chapters accumulate.
func buildOutline(title string, structure bible.StructureType) bible.Outline {
	outline := bible.Outline{
		Element:       bible.NewElement(1, bible.TypeOutline, title+" — Outline"),
		StructureType: structure,
	}
	if structure == bible.StructureThreeAct {
		outline.Acts = []bible.Act{
			{Number: 1, Title: "Setup"},
			{Number: 2, Title: "Confrontation"},
			{Number: 3, Title: "Resolution"},
		}
	}
	return outline
}
