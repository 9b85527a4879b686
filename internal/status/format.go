package status

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Format selects the human-readable rendering of a snapshot.
type Format string

const (
	FormatSummary  Format = "summary"
	FormatDetailed Format = "detailed"
	FormatTable    Format = "table"
)

// ValidateFormat returns an error for unrecognized formats.
func ValidateFormat(f Format) error {
	switch f {
	case FormatSummary, FormatDetailed, FormatTable:
		return nil
	}
	return fmt.Errorf("invalid format %q: must be summary, detailed, or table", f)
}

// Render produces the human-readable form of a snapshot. Presentation
// only; callers that need the raw statistics use the Snapshot itself.
func Render(s *Snapshot, f Format) string {
	switch f {
	case FormatDetailed:
		return renderDetailed(s)
	case FormatTable:
		return renderTable(s)
	default:
		return renderSummary(s)
	}
}

func renderSummary(s *Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", s.Title)
	if s.Genre != "" {
		fmt.Fprintf(&b, " (%s)", s.Genre)
	}
	fmt.Fprintf(&b, " — %d%% complete\n", s.Overall)
	fmt.Fprintf(&b, "Premise: %s\n", premiseLabel(s))
	fmt.Fprintf(&b, "Chapters: %d/%d completed\n", s.ChapterStats.Completed, s.ChapterStats.Total)
	fmt.Fprintf(&b, "Characters: %d/%d completed\n", s.CharacterStats.Completed, s.CharacterStats.Total)
	fmt.Fprintf(&b, "Plot threads: %d/%d completed\n", s.ThreadStats.Completed, s.ThreadStats.Total)
	if s.NextAction != "" {
		fmt.Fprintf(&b, "Next: %s\n", s.NextAction)
	}
	return b.String()
}

func renderDetailed(s *Snapshot) string {
	var b strings.Builder
	b.WriteString(renderSummary(s))

	if s.Words != nil {
		fmt.Fprintf(&b, "\nWord counts: project target %d, chapter targets %d (avg %d)\n",
			s.Words.ProjectTarget, s.Words.ChapterTargets, s.Words.AverageTarget)
	}
	if len(s.ChapterLines) > 0 {
		b.WriteString("\nChapters:\n")
		for _, c := range s.ChapterLines {
			fmt.Fprintf(&b, "  %2d. %s [%s, %d scenes]\n", c.ChapterNumber, c.Title, c.Status, c.SceneCount)
		}
	}
	if len(s.CharacterLines) > 0 {
		b.WriteString("\nCharacters:\n")
		for _, c := range s.CharacterLines {
			arc := "arc undefined"
			if c.HasArc {
				arc = "arc defined"
			}
			fmt.Fprintf(&b, "  - %s (%s, %s)\n", c.Name, c.CharacterType, arc)
		}
	}
	if len(s.ThreadLines) > 0 {
		b.WriteString("\nPlot threads:\n")
		for _, t := range s.ThreadLines {
			fmt.Fprintf(&b, "  - %s (%s, %s)\n", t.Title, t.ThreadType, t.Status)
		}
	}
	return b.String()
}

func renderTable(s *Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %d%% complete\n\n", s.Title, s.Overall)

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTOTAL\tCOMPLETED\tIN PROGRESS\tDRAFT")
	fmt.Fprintf(w, "Chapters\t%d\t%d\t%d\t%d\n",
		s.ChapterStats.Total, s.ChapterStats.Completed, s.ChapterStats.InProgress, s.ChapterStats.Draft)
	fmt.Fprintf(w, "Characters\t%d\t%d\t%d\t%d\n",
		s.CharacterStats.Total, s.CharacterStats.Completed, s.CharacterStats.InProgress, s.CharacterStats.Draft)
	fmt.Fprintf(w, "Plot threads\t%d\t%d\t%d\t%d\n",
		s.ThreadStats.Total, s.ThreadStats.Completed, s.ThreadStats.InProgress, s.ThreadStats.Draft)
	w.Flush()

	if len(s.ChapterLines) > 0 {
		b.WriteString("\n")
		w = tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tCHAPTER\tSTATUS\tSCENES")
		for _, c := range s.ChapterLines {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", c.ChapterNumber, c.Title, c.Status, c.SceneCount)
		}
		w.Flush()
	}

	if s.NextAction != "" {
		fmt.Fprintf(&b, "\nNext: %s\n", s.NextAction)
	}
	return b.String()
}

func premiseLabel(s *Snapshot) string {
	switch {
	case !s.HasPremise:
		return "missing"
	case s.PremiseDone:
		return "completed"
	default:
		return "in progress"
	}
}
