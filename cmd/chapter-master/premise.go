package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/config"
	"github.com/storyforge/chapter-master/internal/factory"
)

var (
	premiseText      string
	premiseFile      string
	premiseAuthor    string
	premiseWordCount int
	premiseNoOutline bool
	premiseStructure string
)

var parsePremiseCmd = &cobra.Command{
	Use:   "parse-premise",
	Short: "Parse a premise and create the story bible",
	Long: `Parse a novel premise and create the story bible. This is the first
step of every project: it analyzes the premise (title, genre, themes,
target audience), creates story-bible/story-bible.json, and optionally
seeds a structural outline. Refuses to overwrite an existing bible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := premiseText
		if text == "" && premiseFile != "" {
			data, err := os.ReadFile(premiseFile)
			if err != nil {
				return fmt.Errorf("reading premise file: %w", err)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("--text or --file is required")
		}

		structure := bible.StructureType(premiseStructure)
		if structure != "" {
			if err := bible.ValidateStructureType(structure); err != nil {
				return err
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.factory.ParsePremise(cmd.Context(), a.projectRoot, factory.PremiseInput{
			Text:            text,
			Author:          premiseAuthor,
			TargetWordCount: premiseWordCount,
			GenerateOutline: !premiseNoOutline,
			StructureType:   structure,
		})
		if err != nil {
			return emit("", nil, err)
		}

		a.hist.Record("parse-premise", result.Message, 0, 0)
		return emit(result.Message, result.Data, nil)
	},
}

func init() {
	parsePremiseCmd.Flags().StringVar(&premiseText, "text", "", "Premise text")
	parsePremiseCmd.Flags().StringVar(&premiseFile, "file", "", "Path to a file containing the premise")
	parsePremiseCmd.Flags().StringVar(&premiseAuthor, "author", "", "Author name")
	parsePremiseCmd.Flags().IntVar(&premiseWordCount, "target-word-count", config.DefaultTargetWordCount, "Target novel length in words")
	parsePremiseCmd.Flags().BoolVar(&premiseNoOutline, "no-outline", false, "Skip seeding an initial outline")
	parsePremiseCmd.Flags().StringVar(&premiseStructure, "structure", "", "Outline structure (three-act, hero-journey, save-the-cat, seven-point, genre-specific)")
}
