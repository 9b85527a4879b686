package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/factory"
)

var (
	charName        string
	charType        string
	charDescription string
	charProfile     bool
	charArc         bool
	charVoice       bool
)

var createCharacterCmd = &cobra.Command{
	Use:   "create-character",
	Short: "Add a character to the story bible",
	Long: `Create a character in the story bible and write its Markdown profile
to characters/<name>.md. Optionally enriches the character with a
generated biography, psychology, arc, and voice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(charName) == "" {
			return fmt.Errorf("--name is required")
		}
		ct := bible.CharacterType(charType)
		if err := bible.ValidateCharacterType(ct); err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.factory.CreateCharacter(cmd.Context(), a.projectRoot, factory.CharacterInput{
			Name:            charName,
			CharacterType:   ct,
			Description:     charDescription,
			GenerateProfile: charProfile,
			GenerateArc:     charArc,
			GenerateVoice:   charVoice,
		})
		if err != nil {
			return emit("", nil, err)
		}

		a.hist.Record("create-character", result.Message, 0, 0)
		return emit(result.Message, result.Data, nil)
	},
}

func init() {
	createCharacterCmd.Flags().StringVar(&charName, "name", "", "Character name (required)")
	createCharacterCmd.Flags().StringVar(&charType, "type", string(bible.CharSupporting), "Narrative role (protagonist, antagonist, supporting, minor)")
	createCharacterCmd.Flags().StringVar(&charDescription, "description", "", "Short description")
	createCharacterCmd.Flags().BoolVar(&charProfile, "generate-profile", false, "Generate a biography and psychology profile")
	createCharacterCmd.Flags().BoolVar(&charArc, "generate-arc", false, "Generate a character arc")
	createCharacterCmd.Flags().BoolVar(&charVoice, "generate-voice", false, "Generate a voice profile")
}
