package main

import (
	"github.com/spf13/cobra"

	"github.com/storyforge/chapter-master/internal/factory"
)

var (
	chapterID        int
	chapterNumber    int
	chapterTitle     string
	chapterPurpose   string
	chapterWordCount int
	chapterNoScenes  bool
	chapterScenes    int
	chapterChars     []int
	chapterThreads   []int
	chapterConflicts []string
)

var generateChapterCmd = &cobra.Command{
	Use:   "generate-chapter",
	Short: "Plan a chapter (or update one by ID)",
	Long: `Create a chapter plan in the story bible, optionally with placeholder
scenes, and write chapters/chapter-NN.md. Pass --id to update an
existing chapter's planning fields instead of creating a new one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.factory.GenerateChapter(cmd.Context(), a.projectRoot, factory.ChapterInput{
			ChapterID:       chapterID,
			ChapterNumber:   chapterNumber,
			Title:           chapterTitle,
			Purpose:         chapterPurpose,
			TargetWordCount: chapterWordCount,
			GenerateScenes:  !chapterNoScenes,
			SceneCount:      chapterScenes,
			Characters:      chapterChars,
			PlotThreads:     chapterThreads,
			Conflicts:       chapterConflicts,
		})
		if err != nil {
			return emit("", nil, err)
		}

		a.hist.Record("generate-chapter", result.Message, 0, 0)
		return emit(result.Message, result.Data, nil)
	},
}

func init() {
	generateChapterCmd.Flags().IntVar(&chapterID, "id", 0, "Existing chapter ID to update")
	generateChapterCmd.Flags().IntVar(&chapterNumber, "number", 0, "Chapter number (default: next after the highest existing)")
	generateChapterCmd.Flags().StringVar(&chapterTitle, "title", "", "Chapter title")
	generateChapterCmd.Flags().StringVar(&chapterPurpose, "purpose", "", "What this chapter accomplishes")
	generateChapterCmd.Flags().IntVar(&chapterWordCount, "target-word-count", 0, "Target chapter length in words")
	generateChapterCmd.Flags().BoolVar(&chapterNoScenes, "no-scenes", false, "Skip creating placeholder scenes")
	generateChapterCmd.Flags().IntVar(&chapterScenes, "scene-count", 0, "Number of scenes to create")
	generateChapterCmd.Flags().IntSliceVar(&chapterChars, "characters", nil, "Character IDs appearing in the chapter")
	generateChapterCmd.Flags().IntSliceVar(&chapterThreads, "plot-threads", nil, "Plot thread IDs this chapter advances")
	generateChapterCmd.Flags().StringSliceVar(&chapterConflicts, "conflicts", nil, "Conflicts driving the chapter")
}
