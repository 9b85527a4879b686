package factory

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/templates"
)

// CharacterInput carries the caller-supplied fields for create-character.
type CharacterInput struct {
	Name            string
	CharacterType   bible.CharacterType
	Description     string
	GenerateProfile bool
	GenerateArc     bool
	GenerateVoice   bool
}

// characterProfile is the output shape of the character enrichment call.
// Fields map directly onto the character's nested blocks.
type characterProfile struct {
	Description string              `json:"description"`
	Biography   *bible.Biography    `json:"biography"`
	Psychology  *bible.Psychology   `json:"psychology"`
	Arc         *bible.CharacterArc `json:"arc"`
	Voice       *bible.Voice        `json:"voice"`
	Appearance  string              `json:"appearance"`
	Traits      []string            `json:"traits"`
}

// CreateCharacter appends a new character to the story bible and writes
// its Markdown document. Requires an existing story bible. Enrichment
// is optional and degrades to the baseline profile on any failure.
func (f *Factory) CreateCharacter(ctx context.Context, projectRoot string, in CharacterInput) (*Result, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("character name is required")
	}
	charType := in.CharacterType
	if charType == "" {
		charType = bible.CharSupporting
	}

	// Load up front: precondition check plus premise context for the
	// enrichment prompt.
	current, err := f.store.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	premiseContent := ""
	if current.Premise != nil {
		premiseContent = current.Premise.Content
	}

	profile, enrichment := f.enrichCharacter(ctx, name, charType, in, premiseContent)

	var created *bible.Character
	updated, err := f.store.Transact(projectRoot, func(b *bible.StoryBible) error {
		c := bible.Character{
			Element:       bible.NewElement(b.NextID(bible.TypeCharacter), bible.TypeCharacter, name),
			CharacterType: charType,
			// Arc starts as the placeholder the consistency checker
			// looks for; enrichment may replace it below.
			Arc: &bible.CharacterArc{StartingState: bible.ArcPlaceholder},
		}
		c.Description = in.Description

		if enrichment.Applied {
			applyProfile(&c, profile)
		}

		if err := bible.ValidateElement(&c); err != nil {
			return fmt.Errorf("character %q: %w", name, err)
		}
		b.Characters = append(b.Characters, c)
		created = &b.Characters[len(b.Characters)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc, err := f.renderer.Render(templates.Character, templates.CharacterData{
		Character: created,
		Names:     characterNames(updated),
	})
	if err != nil {
		return nil, err
	}
	docPath := bible.CharacterPath(projectRoot, name)
	if err := bible.WriteDocument(docPath, doc); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Character %q created (%s, id %d).", name, charType, created.ID)
	if !enrichment.Applied && enrichment.Reason != "" {
		msg += " Profile enrichment skipped: " + enrichment.Reason + "."
	}

	return &Result{
		Message:    msg,
		Data:       created,
		Enrichment: enrichment,
		Paths:      []string{bible.BiblePath(projectRoot), docPath},
	}, nil
}

// enrichCharacter runs the optional profile generation. Any failure is
// logged and swallowed — the caller continues with the baseline.
func (f *Factory) enrichCharacter(ctx context.Context, name string, charType bible.CharacterType, in CharacterInput, premise string) (characterProfile, ai.Enrichment) {
	wantAny := in.GenerateProfile || in.GenerateArc || in.GenerateVoice
	if !wantAny {
		return characterProfile{}, ai.Degraded("no generation flags set")
	}
	if f.gen == nil {
		return characterProfile{}, ai.Degraded("generation service not configured")
	}

	prompt := characterProfilePrompt(name, charType, in.Description, premise,
		in.GenerateProfile, in.GenerateArc, in.GenerateVoice)

	var profile characterProfile
	if err := f.gen.GenerateJSON(ctx, ai.RoleMain, prompt, &profile); err != nil {
		log.Printf("WARNING: character enrichment degraded: %v", err)
		return characterProfile{}, ai.DegradedErr(err)
	}
	return profile, ai.Applied()
}

// applyProfile copies enriched blocks onto the baseline character.
// Empty blocks never clobber caller-supplied values.
func applyProfile(c *bible.Character, p characterProfile) {
	if p.Description != "" && c.Description == "" {
		c.Description = p.Description
	}
	if p.Biography != nil {
		c.Biography = p.Biography
	}
	if p.Psychology != nil {
		c.Psychology = p.Psychology
	}
	if p.Arc != nil && p.Arc.StartingState != "" {
		c.Arc = p.Arc
	}
	if p.Voice != nil {
		c.Voice = p.Voice
	}
	if p.Appearance != "" {
		c.Appearance = p.Appearance
	}
	if len(p.Traits) > 0 {
		c.Traits = p.Traits
	}
}

// characterNames builds the ID → name map used by document templates.
func characterNames(b *bible.StoryBible) map[int]string {
	names := make(map[int]string, len(b.Characters))
	for _, c := range b.Characters {
		names[c.ID] = c.Title
	}
	return names
}
