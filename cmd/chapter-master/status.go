package main

import (
	"github.com/spf13/cobra"

	"github.com/storyforge/chapter-master/internal/status"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's progress and recommended next action",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := status.Format(statusFormat)
		if err := status.ValidateFormat(format); err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		snap, err := a.reporter.Snapshot(a.projectRoot, status.IncludeAll())
		if err != nil {
			return emit("", nil, err)
		}

		if jsonOutput {
			return emit("Status", snap, nil)
		}
		return emit(status.Render(snap, format), nil, nil)
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "summary", "Output format (summary, detailed, table)")
}
