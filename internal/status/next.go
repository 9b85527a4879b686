package status

import (
	"fmt"
	"sort"

	"github.com/storyforge/chapter-master/internal/bible"
)

// NextAction walks the fixed decision ladder and returns the single
// recommended next step. The order is load-bearing: earlier rungs
// always win.
func NextAction(b *bible.StoryBible) string {
	if b.Premise == nil {
		return "Parse your premise to create the story bible (parse-premise)."
	}
	if len(b.Chapters) == 0 {
		return "Generate your first chapter (generate-chapter)."
	}
	if len(b.Characters) == 0 {
		return "Create your first character (create-character)."
	}
	if c := firstChapterWithStatus(b, bible.StatusInProgress); c != nil {
		return fmt.Sprintf("Continue writing chapter %d: %q.", c.ChapterNumber, c.Title)
	}
	if c := firstChapterWithStatus(b, bible.StatusDraft); c != nil {
		return fmt.Sprintf("Start writing chapter %d: %q.", c.ChapterNumber, c.Title)
	}
	if c := firstChapterWithStatus(b, bible.StatusNeedsRevision); c != nil {
		return fmt.Sprintf("Revise chapter %d: %q.", c.ChapterNumber, c.Title)
	}
	return "Run a consistency check on the full story (check-consistency)."
}

// firstChapterWithStatus returns the lowest-numbered chapter in the
// given status, or nil.
func firstChapterWithStatus(b *bible.StoryBible, st bible.Status) *bible.Chapter {
	var found *bible.Chapter
	for i := range b.Chapters {
		c := &b.Chapters[i]
		if c.Status != st {
			continue
		}
		if found == nil || c.ChapterNumber < found.ChapterNumber {
			found = c
		}
	}
	return found
}

// ChapterFilter narrows the next-chapter recommendation.
type ChapterFilter struct {
	Status         bible.Status
	Priority       bible.Priority
	CharacterFocus int
	PlotThread     int
	IncludeScenes  bool
}

// Recommendation is the outcome of a next-chapter query.
type Recommendation struct {
	Chapter *bible.Chapter `json:"chapter,omitempty"`
	Scenes  []bible.Scene  `json:"scenes,omitempty"`
	Reason  string         `json:"reason"`
}

// NextChapter recommends the chapter to work on next: among chapters
// matching the filters, the least-finished status wins, then priority,
// then chapter order. Returns a nil-chapter recommendation with an
// explanatory reason when nothing matches.
func (r *Reporter) NextChapter(projectRoot string, f ChapterFilter) (*Recommendation, error) {
	b, err := r.store.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	return RecommendChapter(b, f), nil
}

// RecommendChapter applies the filter and ranking to an in-memory bible.
func RecommendChapter(b *bible.StoryBible, f ChapterFilter) *Recommendation {
	var candidates []*bible.Chapter
	for i := range b.Chapters {
		c := &b.Chapters[i]
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.CharacterFocus > 0 && !c.ListsCharacter(f.CharacterFocus) {
			continue
		}
		if f.PlotThread > 0 && !c.ListsThread(f.PlotThread) {
			continue
		}
		if c.Status == bible.StatusCompleted && f.Status == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		reason := "No chapters match the given filters."
		if len(b.Chapters) == 0 {
			reason = "No chapters exist yet. Generate one with generate-chapter."
		}
		return &Recommendation{Reason: reason}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if si, sj := statusRank(ci.Status), statusRank(cj.Status); si != sj {
			return si < sj
		}
		if pi, pj := priorityRank(ci.Priority), priorityRank(cj.Priority); pi != pj {
			return pi < pj
		}
		return ci.ChapterNumber < cj.ChapterNumber
	})

	pick := candidates[0]
	rec := &Recommendation{
		Chapter: pick,
		Reason:  recommendReason(pick),
	}
	if f.IncludeScenes {
		rec.Scenes = scenesFor(b, pick.ID)
	}
	return rec
}

// statusRank orders statuses by how close they are to being written:
// in-progress work first, then revisions, then untouched drafts.
func statusRank(s bible.Status) int {
	switch s {
	case bible.StatusInProgress:
		return 0
	case bible.StatusNeedsRevision:
		return 1
	case bible.StatusReview:
		return 2
	case bible.StatusDraft:
		return 3
	default:
		return 4
	}
}

func priorityRank(p bible.Priority) int {
	switch p {
	case bible.PriorityHigh:
		return 0
	case bible.PriorityMedium:
		return 1
	default:
		return 2
	}
}

func recommendReason(c *bible.Chapter) string {
	switch c.Status {
	case bible.StatusInProgress:
		return fmt.Sprintf("Chapter %d is already in progress.", c.ChapterNumber)
	case bible.StatusNeedsRevision:
		return fmt.Sprintf("Chapter %d needs revision.", c.ChapterNumber)
	case bible.StatusReview:
		return fmt.Sprintf("Chapter %d is awaiting review.", c.ChapterNumber)
	default:
		return fmt.Sprintf("Chapter %d is the next unwritten chapter.", c.ChapterNumber)
	}
}

func scenesFor(b *bible.StoryBible, chapterID int) []bible.Scene {
	var scenes []bible.Scene
	for _, s := range b.Scenes {
		if s.ChapterID == chapterID {
			scenes = append(scenes, s)
		}
	}
	return scenes
}
