// Package status derives read-only progress statistics from the story
// bible: per-collection completion counts, the weighted overall
// percentage, and the recommended next action. It never validates or
// mutates anything.
package status

import (
	"math"

	"github.com/storyforge/chapter-master/internal/bible"
)

// Completion weights per category. Only categories with at least one
// element contribute to the weighted denominator.
const (
	weightPremise     = 10
	weightChapters    = 60
	weightCharacters  = 20
	weightPlotThreads = 10
)

// Include selects which sections a status request wants expanded.
type Include struct {
	Chapters    bool
	Characters  bool
	PlotThreads bool
	WordCounts  bool
	NextSteps   bool
}

// IncludeAll turns every section on.
func IncludeAll() Include {
	return Include{Chapters: true, Characters: true, PlotThreads: true, WordCounts: true, NextSteps: true}
}

// CategoryStats counts one element collection.
type CategoryStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Draft      int `json:"draft"`
}

// WordStats aggregates word count targets across the project.
type WordStats struct {
	ProjectTarget  int `json:"projectTarget"`
	ChapterTargets int `json:"chapterTargets"`
	AverageTarget  int `json:"averageTarget"`
}

// ChapterLine is one chapter row in the detailed/table output.
type ChapterLine struct {
	ID            int          `json:"id"`
	ChapterNumber int          `json:"chapterNumber"`
	Title         string       `json:"title"`
	Status        bible.Status `json:"status"`
	SceneCount    int          `json:"sceneCount"`
}

// CharacterLine is one character row in the detailed/table output.
type CharacterLine struct {
	ID            int                 `json:"id"`
	Name          string              `json:"name"`
	CharacterType bible.CharacterType `json:"characterType"`
	HasArc        bool                `json:"hasArc"`
}

// ThreadLine is one plot thread row in the detailed/table output.
type ThreadLine struct {
	ID         int              `json:"id"`
	Title      string           `json:"title"`
	ThreadType bible.ThreadType `json:"threadType"`
	Status     bible.Status     `json:"status"`
	Resolved   bool             `json:"resolved"`
}

// Snapshot is the full derived status of a story bible.
type Snapshot struct {
	Title   string      `json:"title"`
	Author  string      `json:"author,omitempty"`
	Genre   bible.Genre `json:"genre,omitempty"`
	Overall int         `json:"overallCompletion"`

	HasPremise     bool          `json:"hasPremise"`
	PremiseDone    bool          `json:"premiseCompleted"`
	ChapterStats   CategoryStats `json:"chapters"`
	CharacterStats CategoryStats `json:"characters"`
	ThreadStats    CategoryStats `json:"plotThreads"`

	Words      *WordStats `json:"wordCounts,omitempty"`
	NextAction string     `json:"nextAction,omitempty"`

	ChapterLines   []ChapterLine   `json:"chapterDetails,omitempty"`
	CharacterLines []CharacterLine `json:"characterDetails,omitempty"`
	ThreadLines    []ThreadLine    `json:"plotThreadDetails,omitempty"`
}

// Reporter computes status snapshots from the persisted story bible.
type Reporter struct {
	store bible.Store
}

// NewReporter creates a Reporter over the given store.
func NewReporter(store bible.Store) *Reporter {
	return &Reporter{store: store}
}

// Snapshot loads the story bible and derives the requested sections.
func (r *Reporter) Snapshot(projectRoot string, inc Include) (*Snapshot, error) {
	b, err := r.store.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	return Derive(b, inc), nil
}

// Derive computes a snapshot from an in-memory story bible.
func Derive(b *bible.StoryBible, inc Include) *Snapshot {
	s := &Snapshot{
		Title:          b.Meta.Title,
		Author:         b.Meta.Author,
		Genre:          b.Meta.Genre,
		HasPremise:     b.Premise != nil,
		ChapterStats:   countChapters(b),
		CharacterStats: countCharacters(b),
		ThreadStats:    countThreads(b),
	}
	if b.Premise != nil {
		s.PremiseDone = b.Premise.Status == bible.StatusCompleted
	}
	s.Overall = overallCompletion(s)

	if inc.WordCounts {
		s.Words = wordStats(b)
	}
	if inc.NextSteps {
		s.NextAction = NextAction(b)
	}
	if inc.Chapters {
		s.ChapterLines = chapterLines(b)
	}
	if inc.Characters {
		s.CharacterLines = characterLines(b)
	}
	if inc.PlotThreads {
		s.ThreadLines = threadLines(b)
	}
	return s
}

// overallCompletion computes the weighted percentage. Each non-empty
// category contributes weight * completed/total; the denominator is the
// sum of the weights of non-empty categories.
func overallCompletion(s *Snapshot) int {
	num, den := 0.0, 0.0

	if s.HasPremise {
		den += weightPremise
		if s.PremiseDone {
			num += weightPremise
		}
	}
	num, den = addCategory(num, den, s.ChapterStats, weightChapters)
	num, den = addCategory(num, den, s.CharacterStats, weightCharacters)
	num, den = addCategory(num, den, s.ThreadStats, weightPlotThreads)

	if den == 0 {
		return 0
	}
	return int(math.Round(num / den * 100))
}

func addCategory(num, den float64, stats CategoryStats, weight float64) (float64, float64) {
	if stats.Total == 0 {
		return num, den
	}
	return num + weight*float64(stats.Completed)/float64(stats.Total), den + weight
}

func countChapters(b *bible.StoryBible) CategoryStats {
	var s CategoryStats
	for _, c := range b.Chapters {
		tally(&s, c.Status)
	}
	return s
}

func countCharacters(b *bible.StoryBible) CategoryStats {
	var s CategoryStats
	for _, c := range b.Characters {
		tally(&s, c.Status)
	}
	return s
}

func countThreads(b *bible.StoryBible) CategoryStats {
	var s CategoryStats
	for _, t := range b.PlotThreads {
		tally(&s, t.Status)
	}
	return s
}

func tally(s *CategoryStats, st bible.Status) {
	s.Total++
	switch st {
	case bible.StatusCompleted:
		s.Completed++
	case bible.StatusInProgress:
		s.InProgress++
	case bible.StatusDraft:
		s.Draft++
	}
}

func wordStats(b *bible.StoryBible) *WordStats {
	w := &WordStats{ProjectTarget: b.Meta.TargetWordCount}
	for _, c := range b.Chapters {
		w.ChapterTargets += c.WordCountTarget
	}
	if n := len(b.Chapters); n > 0 {
		w.AverageTarget = w.ChapterTargets / n
	}
	return w
}

func chapterLines(b *bible.StoryBible) []ChapterLine {
	lines := make([]ChapterLine, 0, len(b.Chapters))
	for _, c := range b.Chapters {
		lines = append(lines, ChapterLine{
			ID:            c.ID,
			ChapterNumber: c.ChapterNumber,
			Title:         c.Title,
			Status:        c.Status,
			SceneCount:    len(c.Scenes),
		})
	}
	return lines
}

func characterLines(b *bible.StoryBible) []CharacterLine {
	lines := make([]CharacterLine, 0, len(b.Characters))
	for _, c := range b.Characters {
		lines = append(lines, CharacterLine{
			ID:            c.ID,
			Name:          c.Title,
			CharacterType: c.CharacterType,
			HasArc:        c.HasDefinedArc(),
		})
	}
	return lines
}

func threadLines(b *bible.StoryBible) []ThreadLine {
	lines := make([]ThreadLine, 0, len(b.PlotThreads))
	for _, t := range b.PlotThreads {
		lines = append(lines, ThreadLine{
			ID:         t.ID,
			Title:      t.Title,
			ThreadType: t.ThreadType,
			Status:     t.Status,
			Resolved:   t.Resolution != "",
		})
	}
	return lines
}
