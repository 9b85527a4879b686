package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storyforge/chapter-master/internal/consistency"
)

var (
	checkTypeFlag    string
	checkCharacterID int
	checkThreadID    int
	checkStart       int
	checkEnd         int
	checkAutoFix     bool
	checkFixMode     string
	checkNoReport    bool
)

var checkConsistencyCmd = &cobra.Command{
	Use:   "check-consistency",
	Short: "Run consistency checks across the story bible",
	Long: `Run rule-based consistency checks: character appearances vs chapter
listings, plot thread usage and resolution, chapter numbering gaps and
duplicates, and style guide conventions. Optionally auto-fixes eligible
issues and writes a report to story-bible/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.checker.Run(cmd.Context(), a.projectRoot, consistency.Params{
			CheckType:      consistency.CheckType(checkTypeFlag),
			CharacterID:    checkCharacterID,
			ThreadID:       checkThreadID,
			StartChapter:   checkStart,
			EndChapter:     checkEnd,
			AutoFix:        checkAutoFix,
			FixMode:        consistency.FixMode(checkFixMode),
			GenerateReport: !checkNoReport,
		})
		if err != nil {
			return emit("", nil, err)
		}

		summary := fmt.Sprintf("Consistency check (%s): %d issues, %d fixed",
			report.Params.CheckType, len(report.Issues), len(report.Fixed))
		a.hist.Record("check-consistency", summary, len(report.Issues), len(report.Fixed))

		if jsonOutput {
			return emit(summary, report, nil)
		}

		var b strings.Builder
		b.WriteString(summary)
		for _, issue := range report.Issues {
			fixed := ""
			if issue.FixedAt != "" {
				fixed = " [FIXED]"
			}
			fmt.Fprintf(&b, "\n  [%s] %s%s: %s", issue.Severity, issue.Type, fixed, issue.Description)
		}
		if report.Analysis != "" {
			fmt.Fprintf(&b, "\n\nAnalysis:\n%s", report.Analysis)
		}
		if report.ReportPath != "" {
			fmt.Fprintf(&b, "\n\nReport written to %s", report.ReportPath)
		}
		return emit(b.String(), nil, nil)
	},
}

func init() {
	checkConsistencyCmd.Flags().StringVar(&checkTypeFlag, "type", "all", "Rule family to run (character, plot, timeline, style, all)")
	checkConsistencyCmd.Flags().IntVar(&checkCharacterID, "character-id", 0, "Limit character checks to one character")
	checkConsistencyCmd.Flags().IntVar(&checkThreadID, "plot-thread-id", 0, "Limit plot checks to one thread")
	checkConsistencyCmd.Flags().IntVar(&checkStart, "start-chapter", 1, "First chapter number in scope")
	checkConsistencyCmd.Flags().IntVar(&checkEnd, "end-chapter", 0, "Last chapter number in scope (0 = unbounded)")
	checkConsistencyCmd.Flags().BoolVar(&checkAutoFix, "auto-fix", false, "Apply the implemented fixes to eligible issues")
	checkConsistencyCmd.Flags().StringVar(&checkFixMode, "fix-mode", "conservative", "Auto-fix eligibility (conservative, aggressive)")
	checkConsistencyCmd.Flags().BoolVar(&checkNoReport, "no-report", false, "Skip writing the Markdown report")
}
