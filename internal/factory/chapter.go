package factory

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/config"
	"github.com/storyforge/chapter-master/internal/templates"
)

// ChapterInput carries the caller-supplied fields for generate-chapter.
// ChapterID selects update mode; otherwise a new chapter is created.
type ChapterInput struct {
	ChapterID       int
	ChapterNumber   int
	Title           string
	Purpose         string
	TargetWordCount int
	GenerateScenes  bool
	SceneCount      int
	Characters      []int
	PlotThreads     []int
	Conflicts       []string
}

// chapterPlan is the output shape of the chapter enrichment call.
type chapterPlan struct {
	Purpose         string      `json:"purpose"`
	Conflicts       []string    `json:"conflicts"`
	PlotAdvancement string      `json:"plotAdvancement"`
	Scenes          []scenePlan `json:"scenes"`
}

// scenePlan is one planned scene within a chapterPlan.
type scenePlan struct {
	Title     string `json:"title"`
	SceneType string `json:"sceneType"`
	Setting   string `json:"setting"`
	Purpose   string `json:"purpose"`
}

// GenerateChapter creates a new chapter (or updates one by ID), together
// with its placeholder scenes, and writes the chapter document. This is
// the only factory path that updates an element in place rather than
// appending: an explicit ChapterID replaces the matching chapter's
// planning fields.
func (f *Factory) GenerateChapter(ctx context.Context, projectRoot string, in ChapterInput) (*Result, error) {
	current, err := f.store.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	if current.Premise == nil {
		return nil, ErrNoPremise
	}

	if in.TargetWordCount <= 0 {
		in.TargetWordCount = config.DefaultChapterWordCount
	}
	if in.SceneCount <= 0 {
		in.SceneCount = config.DefaultSceneCount
	}

	// Resolve the baseline chapter shape before enrichment so the
	// prompt can describe it.
	baseline, err := baselineChapter(current, in)
	if err != nil {
		return nil, err
	}

	plan, enrichment := f.enrichChapter(ctx, current, baseline, in.SceneCount)

	var chapter *bible.Chapter
	var scenes []bible.Scene
	updated, err := f.store.Transact(projectRoot, func(b *bible.StoryBible) error {
		if in.ChapterID > 0 {
			chapter = b.ChapterByID(in.ChapterID)
			if chapter == nil {
				return fmt.Errorf("chapter %d not found", in.ChapterID)
			}
			applyChapterInput(chapter, in)
			chapter.Touch()
		} else {
			c := *baseline
			c.Element = bible.NewElement(b.NextID(bible.TypeChapter), bible.TypeChapter, baseline.Title)
			b.Chapters = append(b.Chapters, c)
			chapter = &b.Chapters[len(b.Chapters)-1]
		}

		if enrichment.Applied {
			applyPlan(chapter, plan)
		}

		if in.GenerateScenes && len(chapter.Scenes) == 0 {
			scenes = buildScenes(b, chapter, plan, in.SceneCount)
			for i := range scenes {
				b.Scenes = append(b.Scenes, scenes[i])
				chapter.Scenes = append(chapter.Scenes, scenes[i].ID)
			}
		}

		if err := bible.ValidateElement(chapter); err != nil {
			return fmt.Errorf("chapter %d: %w", chapter.ChapterNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	doc, err := f.renderer.Render(templates.Chapter, templates.ChapterData{
		Chapter: chapter,
		Scenes:  updated.ScenesForChapter(chapter.ID),
		Names:   characterNames(updated),
	})
	if err != nil {
		return nil, err
	}
	docPath := bible.ChapterPath(projectRoot, chapter.ChapterNumber)
	if err := bible.WriteDocument(docPath, doc); err != nil {
		return nil, err
	}

	verb := "created"
	if in.ChapterID > 0 {
		verb = "updated"
	}
	msg := fmt.Sprintf("Chapter %d %q %s (id %d, %d scenes).",
		chapter.ChapterNumber, chapter.Title, verb, chapter.ID, len(chapter.Scenes))
	if !enrichment.Applied && enrichment.Reason != "" {
		msg += " Plan enrichment skipped: " + enrichment.Reason + "."
	}

	return &Result{
		Message:    msg,
		Data:       chapter,
		Enrichment: enrichment,
		Paths:      []string{bible.BiblePath(projectRoot), docPath},
	}, nil
}

// baselineChapter assembles the chapter shape from caller input alone.
// For updates it resolves the existing chapter; for creation it picks
// the next chapter number when none was given.
func baselineChapter(b *bible.StoryBible, in ChapterInput) (*bible.Chapter, error) {
	if in.ChapterID > 0 {
		existing := b.ChapterByID(in.ChapterID)
		if existing == nil {
			return nil, fmt.Errorf("chapter %d not found", in.ChapterID)
		}
		c := *existing
		applyChapterInput(&c, in)
		return &c, nil
	}

	number := in.ChapterNumber
	if number <= 0 {
		number = maxChapterNumber(b) + 1
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = fmt.Sprintf("Chapter %d", number)
	}

	c := &bible.Chapter{
		ChapterNumber:   number,
		Purpose:         in.Purpose,
		Conflicts:       in.Conflicts,
		Characters:      in.Characters,
		PlotThreads:     in.PlotThreads,
		WordCountTarget: in.TargetWordCount,
	}
	c.Title = title
	return c, nil
}

// applyChapterInput overlays non-zero input fields onto a chapter.
func applyChapterInput(c *bible.Chapter, in ChapterInput) {
	if in.ChapterNumber > 0 {
		c.ChapterNumber = in.ChapterNumber
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		c.Title = t
	}
	if in.Purpose != "" {
		c.Purpose = in.Purpose
	}
	if in.TargetWordCount > 0 {
		c.WordCountTarget = in.TargetWordCount
	}
	if len(in.Characters) > 0 {
		c.Characters = in.Characters
	}
	if len(in.PlotThreads) > 0 {
		c.PlotThreads = in.PlotThreads
	}
	if len(in.Conflicts) > 0 {
		c.Conflicts = in.Conflicts
	}
}

// enrichChapter runs the optional chapter planning generation.
func (f *Factory) enrichChapter(ctx context.Context, b *bible.StoryBible, chapter *bible.Chapter, sceneCount int) (chapterPlan, ai.Enrichment) {
	if f.gen == nil {
		return chapterPlan{}, ai.Degraded("generation service not configured")
	}

	var names []string
	for _, id := range chapter.Characters {
		if c := b.CharacterByID(id); c != nil {
			names = append(names, c.Title)
		}
	}

	prompt := chapterPrompt(chapter, b.Premise.Content, names, sceneCount)

	var plan chapterPlan
	if err := f.gen.GenerateJSON(ctx, ai.RoleMain, prompt, &plan); err != nil {
		log.Printf("WARNING: chapter enrichment degraded: %v", err)
		return chapterPlan{}, ai.DegradedErr(err)
	}
	return plan, ai.Applied()
}

// applyPlan overlays the enriched plan onto a chapter, never clobbering
// caller-supplied values.
func applyPlan(c *bible.Chapter, plan chapterPlan) {
	if c.Purpose == "" && plan.Purpose != "" {
		c.Purpose = plan.Purpose
	}
	if len(c.Conflicts) == 0 && len(plan.Conflicts) > 0 {
		c.Conflicts = plan.Conflicts
	}
	if c.PlotAdvancement == "" && plan.PlotAdvancement != "" {
		c.PlotAdvancement = plan.PlotAdvancement
	}
}

// buildScenes creates the chapter's child scenes. Planned scenes take
// their title, type, setting and purpose from the plan; the remainder
// are placeholders with the default scene type. Scene IDs come from the
// same max+1 assignment as every other collection.
func buildScenes(b *bible.StoryBible, chapter *bible.Chapter, plan chapterPlan, count int) []bible.Scene {
	if len(plan.Scenes) > 0 {
		count = len(plan.Scenes)
	}

	scenes := make([]bible.Scene, 0, count)
	nextID := b.NextID(bible.TypeScene)
	for i := 0; i < count; i++ {
		title := fmt.Sprintf("Scene %d", i+1)
		sceneType := bible.SceneDialogue
		setting, purpose := "", ""

		if i < len(plan.Scenes) {
			p := plan.Scenes[i]
			if strings.TrimSpace(p.Title) != "" {
				title = strings.TrimSpace(p.Title)
			}
			if t := normalizeSceneType(p.SceneType); t != "" {
				sceneType = t
			}
			setting = p.Setting
			purpose = p.Purpose
		}

		s := bible.Scene{
			Element:    bible.NewElement(nextID+i, bible.TypeScene, title),
			SceneType:  sceneType,
			ChapterID:  chapter.ID,
			Characters: chapter.Characters,
			Setting:    setting,
			Purpose:    purpose,
		}
		scenes = append(scenes, s)
	}
	return scenes
}

// normalizeSceneType maps loose model output onto the scene type enum,
// returning "" for anything unrecognized.
func normalizeSceneType(s string) bible.SceneType {
	t := bible.SceneType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case bible.SceneAction, bible.SceneDialogue, bible.SceneExposition,
		bible.SceneClimax, bible.SceneTransition, bible.SceneFlashback:
		return t
	}
	return ""
}

// maxChapterNumber returns the highest chapter number in the bible.
func maxChapterNumber(b *bible.StoryBible) int {
	max := 0
	for _, c := range b.Chapters {
		if c.ChapterNumber > max {
			max = c.ChapterNumber
		}
	}
	return max
}
