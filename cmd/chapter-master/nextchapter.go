package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/status"
)

var (
	nextStatus    string
	nextPriority  string
	nextCharacter int
	nextThread    int
	nextNoScenes  bool
)

var nextChapterCmd = &cobra.Command{
	Use:   "next-chapter",
	Short: "Recommend the chapter to work on next",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		rec, err := a.reporter.NextChapter(a.projectRoot, status.ChapterFilter{
			Status:         bible.Status(nextStatus),
			Priority:       bible.Priority(nextPriority),
			CharacterFocus: nextCharacter,
			PlotThread:     nextThread,
			IncludeScenes:  !nextNoScenes,
		})
		if err != nil {
			return emit("", nil, err)
		}

		if rec.Chapter == nil {
			return emit(rec.Reason, rec, nil)
		}

		var b strings.Builder
		c := rec.Chapter
		fmt.Fprintf(&b, "Work on chapter %d next: %q (%s, %s priority). %s",
			c.ChapterNumber, c.Title, c.Status, c.Priority, rec.Reason)
		for _, s := range rec.Scenes {
			fmt.Fprintf(&b, "\n  - %s (%s, %s)", s.Title, s.SceneType, s.Status)
		}
		return emit(b.String(), rec, nil)
	},
}

func init() {
	nextChapterCmd.Flags().StringVar(&nextStatus, "status", "", "Only consider chapters in this status")
	nextChapterCmd.Flags().StringVar(&nextPriority, "priority", "", "Only consider chapters with this priority")
	nextChapterCmd.Flags().IntVar(&nextCharacter, "character-focus", 0, "Only consider chapters featuring this character ID")
	nextChapterCmd.Flags().IntVar(&nextThread, "plot-thread", 0, "Only consider chapters advancing this plot thread ID")
	nextChapterCmd.Flags().BoolVar(&nextNoScenes, "no-scenes", false, "Omit the recommended chapter's scenes")
}
