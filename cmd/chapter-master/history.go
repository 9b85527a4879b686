package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent tool runs for this project",
	Long: `Show the run log: what the tools did to this project's story bible
and when. The log lives in .chapter-master/history.db under the
project root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		entries, err := a.hist.Recent(historyLimit)
		if err != nil {
			return emit("", nil, err)
		}
		if len(entries) == 0 {
			return emit("No runs recorded yet.", nil, nil)
		}

		if jsonOutput {
			return emit(fmt.Sprintf("%d runs", len(entries)), entries, nil)
		}

		var b strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&b, "%s  %-18s %s", e.CreatedAt, e.Operation, e.Summary)
			if e.IssueCount > 0 || e.FixedCount > 0 {
				fmt.Fprintf(&b, " (issues: %d, fixed: %d)", e.IssueCount, e.FixedCount)
			}
			b.WriteString("\n")
		}
		return emit(strings.TrimRight(b.String(), "\n"), nil, nil)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
}
