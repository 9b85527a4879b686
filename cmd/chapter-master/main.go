// Chapter Master: AI-assisted novel planning.
//
// The same six operations are exposed two ways: as subcommands of this
// CLI, and as MCP tools over stdio for AI hosts (Claude Code, Cursor,
// and friends).
//
// Usage:
//
//	chapter-master serve                       # Start the MCP server (stdio transport)
//	chapter-master parse-premise --file p.txt  # Create the story bible
//	chapter-master status                      # Show progress
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storyforge/chapter-master/internal/server"
)

// Global flags
var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "chapter-master",
	Short: "Plan a novel with a story bible, consistency checks, and AI enrichment",
	Long: `Chapter Master keeps a novel's planning state in a story bible:
a single JSON document holding the premise, outline, characters,
chapters, scenes, and plot threads, mirrored into human-readable
Markdown files.

Typical flow:
  chapter-master parse-premise --file premise.txt   # Create the story bible
  chapter-master create-character --name "Mara"     # Build the cast
  chapter-master generate-chapter --title "Arrival" # Plan chapters
  chapter-master check-consistency                  # Find structural problems
  chapter-master status                             # See progress and next steps

Run 'chapter-master serve' to expose the same operations as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chapter-master v%s\n", server.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(parsePremiseCmd)
	rootCmd.AddCommand(createCharacterCmd)
	rootCmd.AddCommand(generateChapterCmd)
	rootCmd.AddCommand(checkConsistencyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(nextChapterCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// errSilent means the failure was already reported as JSON.
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
