package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/consistency"
	"github.com/storyforge/chapter-master/internal/history"
)

// CheckConsistencyTool handles the story_check_consistency MCP tool.
type CheckConsistencyTool struct {
	checker *consistency.Checker
	hist    *history.Log
}

// NewCheckConsistencyTool creates a CheckConsistencyTool with its dependencies.
func NewCheckConsistencyTool(c *consistency.Checker, hist *history.Log) *CheckConsistencyTool {
	return &CheckConsistencyTool{checker: c, hist: hist}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckConsistencyTool) Definition() mcp.Tool {
	return mcp.NewTool("story_check_consistency",
		mcp.WithDescription(
			"Run rule-based consistency checks across the story bible: character "+
				"appearances vs chapter listings, plot thread usage and resolution, "+
				"chapter numbering gaps and duplicates, and style guide conventions. "+
				"Optionally auto-fixes eligible issues and writes a report to "+
				"story-bible/consistency-report-<timestamp>.md. "+
				"Requires: story_parse_premise must have been run first.",
		),
		mcp.WithString("check_type",
			mcp.Description("Which rule family to run (default: all)"),
			mcp.Enum("character", "plot", "timeline", "style", "all"),
		),
		mcp.WithNumber("character_id",
			mcp.Description("Limit character checks to one character"),
		),
		mcp.WithNumber("plot_thread_id",
			mcp.Description("Limit plot checks to one thread"),
		),
		mcp.WithNumber("start_chapter",
			mcp.Description("First chapter number in scope (default: 1)"),
		),
		mcp.WithNumber("end_chapter",
			mcp.Description("Last chapter number in scope (default: unbounded)"),
		),
		mcp.WithBoolean("auto_fix",
			mcp.Description("Apply the implemented fixes to eligible issues (default: false)"),
		),
		mcp.WithString("fix_mode",
			mcp.Description("Which severities auto-fix may touch: conservative = minor only, aggressive adds moderate (default: conservative)"),
			mcp.Enum("conservative", "aggressive"),
		),
		mcp.WithBoolean("generate_report",
			mcp.Description("Write a Markdown report of the run (default: true)"),
		),
	)
}

// Handle processes the story_check_consistency tool call.
func (t *CheckConsistencyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectRoot, err := bible.FindProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	params := consistency.Params{
		CheckType:      consistency.CheckType(req.GetString("check_type", string(consistency.CheckAll))),
		CharacterID:    intArg(req, "character_id", 0),
		ThreadID:       intArg(req, "plot_thread_id", 0),
		StartChapter:   intArg(req, "start_chapter", 1),
		EndChapter:     intArg(req, "end_chapter", 0),
		AutoFix:        boolArg(req, "auto_fix", false),
		FixMode:        consistency.FixMode(req.GetString("fix_mode", string(consistency.FixConservative))),
		GenerateReport: boolArg(req, "generate_report", true),
	}

	report, err := t.checker.Run(ctx, projectRoot, params)
	if err != nil {
		return errorResult(err), nil
	}

	summary := fmt.Sprintf("Consistency check (%s): %d issues, %d fixed",
		params.CheckType, len(report.Issues), len(report.Fixed))
	t.hist.Record("check-consistency", summary, len(report.Issues), len(report.Fixed))

	return mcp.NewToolResultText(formatReport(report)), nil
}

// formatReport renders the run outcome for the tool response.
func formatReport(r *consistency.Report) string {
	var b strings.Builder

	if len(r.Issues) == 0 {
		fmt.Fprintf(&b, "No consistency issues found (%s check).\n", r.Params.CheckType)
	} else {
		fmt.Fprintf(&b, "Found %d consistency issues (%s check):\n\n", len(r.Issues), r.Params.CheckType)
		for i, issue := range r.Issues {
			fixed := ""
			if issue.FixedAt != "" {
				fixed = " [FIXED]"
			}
			fmt.Fprintf(&b, "[%d] %s (%s)%s\n    %s\n", i+1, issue.Type, issue.Severity, fixed, issue.Description)
		}
	}

	if len(r.Fixed) > 0 {
		fmt.Fprintf(&b, "\nAuto-fixed %d issues in %s mode.\n", len(r.Fixed), r.Params.FixMode)
	}
	if r.Analysis != "" {
		fmt.Fprintf(&b, "\nAnalysis:\n%s\n", r.Analysis)
	}
	if r.ReportPath != "" {
		fmt.Fprintf(&b, "\nReport written to %s\n", r.ReportPath)
	}
	return b.String()
}
