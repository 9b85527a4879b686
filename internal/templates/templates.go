// Package templates renders the human-readable Markdown mirrors of
// story elements: premise, outline, character and chapter documents,
// and the consistency report. Templates are embedded at build time so
// the binary is self-contained.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/storyforge/chapter-master/internal/bible"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

// ID names an embedded template.
type ID string

const (
	Premise   ID = "premise"
	Outline   ID = "outline"
	Character ID = "character"
	Chapter   ID = "chapter"
	Report    ID = "report"
)

// templateFiles maps template IDs to their embedded filenames.
var templateFiles = map[ID]string{
	Premise:   "premise.md.tmpl",
	Outline:   "outline.md.tmpl",
	Character: "character.md.tmpl",
	Chapter:   "chapter.md.tmpl",
	Report:    "report.md.tmpl",
}

// Renderer renders an embedded template with the given data.
// Abstracted as an interface so tools can be tested with fakes.
type Renderer interface {
	Render(id ID, data any) (string, error)
}

// renderer is the embed-backed Renderer.
type renderer struct {
	templates *template.Template
}

// NewRenderer parses all embedded templates. Fails only on a malformed
// template, which is a build defect, not a runtime condition.
func NewRenderer() (Renderer, error) {
	funcs := template.FuncMap{
		"join": strings.Join,
	}

	t, err := template.New("story").Funcs(funcs).ParseFS(templateFS, "templates/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &renderer{templates: t}, nil
}

// Render executes the template identified by id.
func (r *renderer) Render(id ID, data any) (string, error) {
	name, ok := templateFiles[id]
	if !ok {
		return "", fmt.Errorf("unknown template %q", id)
	}

	var b strings.Builder
	if err := r.templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}

// --- Template data ---

// PremiseData feeds the premise document template.
type PremiseData struct {
	Meta    bible.Meta
	Premise *bible.Premise
}

// OutlineData feeds the outline document template.
type OutlineData struct {
	Meta    bible.Meta
	Outline *bible.Outline
}

// CharacterData feeds the character document template. Relationships
// carries resolved names for the character IDs referenced in the
// biography, keyed by ID.
type CharacterData struct {
	Character *bible.Character
	Names     map[int]string
}

// ChapterData feeds the chapter document template.
type ChapterData struct {
	Chapter *bible.Chapter
	Scenes  []bible.Scene
	Names   map[int]string
}

// ReportIssue is one issue row in a consistency report.
type ReportIssue struct {
	Type        string
	Severity    string
	Description string
}

// ReportData feeds the consistency report template.
type ReportData struct {
	GeneratedAt string
	CheckType   string
	Scope       string
	Issues      []ReportIssue
	Fixed       []ReportIssue
	Analysis    string
}
