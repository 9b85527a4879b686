package consistency

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/templates"
)

// Params scopes one consistency run.
type Params struct {
	CheckType      CheckType
	CharacterID    int
	ThreadID       int
	StartChapter   int
	EndChapter     int // 0 = unbounded
	AutoFix        bool
	FixMode        FixMode
	GenerateReport bool
}

// Normalize fills in defaults and validates the enums.
func (p *Params) Normalize() error {
	if p.CheckType == "" {
		p.CheckType = CheckAll
	}
	if err := ValidateCheckType(p.CheckType); err != nil {
		return err
	}
	if p.FixMode == "" {
		p.FixMode = FixConservative
	}
	if err := ValidateFixMode(p.FixMode); err != nil {
		return err
	}
	if p.StartChapter <= 0 {
		p.StartChapter = 1
	}
	return nil
}

// Report is the outcome of one consistency run.
type Report struct {
	Params     Params  `json:"params"`
	Issues     []Issue `json:"issues"`
	Fixed      []Issue `json:"fixed,omitempty"`
	Analysis   string  `json:"analysis,omitempty"`
	ReportPath string  `json:"reportPath,omitempty"`
}

// advisoryTimeout bounds the best-effort analysis call so it can never
// stall the primary operation for long.
const advisoryTimeout = 30 * time.Second

// Checker runs the consistency rules against the story bible.
// gen is optional and only used for the advisory narrative analysis.
type Checker struct {
	store    bible.Store
	renderer templates.Renderer
	gen      ai.Generator
}

// NewChecker creates a Checker. Pass gen as nil to skip the advisory
// analysis step.
func NewChecker(store bible.Store, renderer templates.Renderer, gen ai.Generator) *Checker {
	return &Checker{store: store, renderer: renderer, gen: gen}
}

// Run executes the scoped rules, optionally auto-fixes, optionally asks
// the generation service for an advisory analysis, and optionally writes
// a report document. The issue list itself is fully deterministic — the
// advisory analysis never alters it.
func (c *Checker) Run(ctx context.Context, projectRoot string, p Params) (*Report, error) {
	if err := p.Normalize(); err != nil {
		return nil, err
	}

	b, err := c.store.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	report := &Report{Params: p, Issues: c.evaluate(b, p)}

	if p.AutoFix && len(report.Issues) > 0 {
		fixed, err := c.autoFix(projectRoot, report.Issues, p.FixMode)
		if err != nil {
			return nil, err
		}
		report.Fixed = fixed
	}

	// Best-effort narrative analysis: advisory text appended to the
	// report, never altering the issue list; failure is swallowed.
	if len(report.Issues) > 0 && c.gen != nil {
		report.Analysis = c.analyze(ctx, report.Issues)
	}

	if p.GenerateReport {
		path, err := c.writeReport(projectRoot, report)
		if err != nil {
			return nil, err
		}
		report.ReportPath = path
	}

	return report, nil
}

// evaluate runs the selected rule families over the scoped bible.
func (c *Checker) evaluate(b *bible.StoryBible, p Params) []Issue {
	chapters := scopedChapters(b, p)

	var issues []Issue
	if p.CheckType == CheckAll || p.CheckType == CheckCharacter {
		issues = append(issues, characterIssues(b, chapters, p.CharacterID)...)
	}
	if p.CheckType == CheckAll || p.CheckType == CheckPlot {
		issues = append(issues, plotIssues(b, chapters, p.ThreadID)...)
	}
	if p.CheckType == CheckAll || p.CheckType == CheckTimeline {
		issues = append(issues, timelineIssues(chapters)...)
	}
	if p.CheckType == CheckAll || p.CheckType == CheckStyle {
		issues = append(issues, styleIssues(b, chapters)...)
	}
	return issues
}

// scopedChapters returns the chapters whose number falls inside the
// requested range, in bible order.
func scopedChapters(b *bible.StoryBible, p Params) []*bible.Chapter {
	var result []*bible.Chapter
	for i := range b.Chapters {
		ch := &b.Chapters[i]
		if ch.ChapterNumber < p.StartChapter {
			continue
		}
		if p.EndChapter > 0 && ch.ChapterNumber > p.EndChapter {
			continue
		}
		result = append(result, ch)
	}
	return result
}

// --- Character rules ---

// characterIssues checks that every scene appearance is reflected in
// the owning chapter's character list, and that recurring characters
// have a defined arc.
func characterIssues(b *bible.StoryBible, chapters []*bible.Chapter, characterID int) []Issue {
	inScope := make(map[int]*bible.Chapter, len(chapters))
	for _, ch := range chapters {
		inScope[ch.ID] = ch
	}

	var issues []Issue

	// Unlisted appearances: scene lists a character its chapter omits.
	for i := range b.Scenes {
		scene := &b.Scenes[i]
		chapter, ok := inScope[scene.ChapterID]
		if !ok {
			continue
		}
		for _, cid := range scene.Characters {
			if characterID > 0 && cid != characterID {
				continue
			}
			if chapter.ListsCharacter(cid) {
				continue
			}
			issues = append(issues, Issue{
				Type:          IssueCharacterUnlisted,
				Severity:      SeverityModerate,
				Description:   fmt.Sprintf("%s appears in scene %q but is not listed in chapter %d", characterLabel(b, cid), scene.Title, chapter.ChapterNumber),
				ChapterID:     chapter.ID,
				ChapterNumber: chapter.ChapterNumber,
				SceneID:       scene.ID,
				CharacterID:   cid,
			})
		}
	}

	// Undefined arcs: a character carried across multiple chapters
	// whose arc is empty or still the placeholder.
	for i := range b.Characters {
		char := &b.Characters[i]
		if characterID > 0 && char.ID != characterID {
			continue
		}
		appearances := 0
		for _, ch := range chapters {
			if ch.ListsCharacter(char.ID) {
				appearances++
			}
		}
		if appearances > 1 && !char.HasDefinedArc() {
			issues = append(issues, Issue{
				Type:        IssueCharacterArcUndefined,
				Severity:    SeverityMinor,
				Description: fmt.Sprintf("%s appears in %d chapters but has no defined arc", char.Title, appearances),
				CharacterID: char.ID,
			})
		}
	}

	return issues
}

// --- Plot rules ---

// plotIssues checks that every thread is either advanced by some
// in-scope chapter or completed, and that completed threads carry a
// resolution.
func plotIssues(b *bible.StoryBible, chapters []*bible.Chapter, threadID int) []Issue {
	var issues []Issue

	for i := range b.PlotThreads {
		thread := &b.PlotThreads[i]
		if threadID > 0 && thread.ID != threadID {
			continue
		}

		if thread.Status != bible.StatusCompleted && !threadReferenced(thread, chapters) {
			issues = append(issues, Issue{
				Type:        IssuePlotThreadUnused,
				Severity:    SeverityMinor,
				Description: fmt.Sprintf("plot thread %q is not advanced by any chapter in scope", thread.Title),
				ThreadID:    thread.ID,
			})
		}

		if thread.Status == bible.StatusCompleted && strings.TrimSpace(thread.Resolution) == "" {
			issues = append(issues, Issue{
				Type:        IssuePlotThreadUnresolved,
				Severity:    SeverityModerate,
				Description: fmt.Sprintf("plot thread %q is marked completed but has no resolution", thread.Title),
				ThreadID:    thread.ID,
			})
		}
	}

	return issues
}

// threadReferenced reports whether any chapter references the thread —
// by ID, or by a case-insensitive mention of its title in the chapter's
// plot advancement text.
func threadReferenced(thread *bible.PlotThread, chapters []*bible.Chapter) bool {
	title := strings.ToLower(thread.Title)
	for _, ch := range chapters {
		if ch.ListsThread(thread.ID) {
			return true
		}
		if title != "" && strings.Contains(strings.ToLower(ch.PlotAdvancement), title) {
			return true
		}
	}
	return false
}

// --- Timeline rules ---

// timelineIssues checks chapter numbering: one issue per duplicated
// number, one issue per gap between adjacent distinct numbers.
func timelineIssues(chapters []*bible.Chapter) []Issue {
	counts := make(map[int]int)
	for _, ch := range chapters {
		counts[ch.ChapterNumber]++
	}

	numbers := make([]int, 0, len(counts))
	for n := range counts {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var issues []Issue
	for _, n := range numbers {
		if counts[n] > 1 {
			issues = append(issues, Issue{
				Type:          IssueDuplicateChapterNumber,
				Severity:      SeverityCritical,
				Description:   fmt.Sprintf("chapter number %d is used by %d chapters", n, counts[n]),
				ChapterNumber: n,
				Count:         counts[n],
			})
		}
	}
	for i := 1; i < len(numbers); i++ {
		if numbers[i]-numbers[i-1] > 1 {
			issues = append(issues, Issue{
				Type:          IssueChapterSequenceGap,
				Severity:      SeverityMinor,
				Description:   fmt.Sprintf("chapter sequence jumps from %d to %d", numbers[i-1], numbers[i]),
				ChapterNumber: numbers[i-1],
				Count:         numbers[i] - numbers[i-1] - 1,
			})
		}
	}
	return issues
}

// --- Style rules ---

// styleIssues checks the style guide's conventions against chapters.
// Only the POV rule is implemented; tense consistency would require
// reading written chapter content, which is out of scope.
func styleIssues(b *bible.StoryBible, chapters []*bible.Chapter) []Issue {
	if b.Style == nil || strings.TrimSpace(b.Style.POV) == "" {
		return nil
	}

	missing := 0
	for _, ch := range chapters {
		if ch.POV == 0 {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}

	// One aggregate issue, not one per chapter.
	return []Issue{{
		Type:        IssuePOVUndefined,
		Severity:    SeverityMinor,
		Description: fmt.Sprintf("style guide defines a POV convention (%s) but %d chapters in scope have no POV set", b.Style.POV, missing),
		Count:       missing,
	}}
}

// --- Advisory analysis ---

// analyze asks the generation service for a prioritized narrative
// reading of the issue list. Best effort: bounded timeout, failures
// logged and swallowed, empty string on any problem.
func (c *Checker) analyze(ctx context.Context, issues []Issue) string {
	ctx, cancel := context.WithTimeout(ctx, advisoryTimeout)
	defer cancel()

	var b strings.Builder
	b.WriteString("These structural issues were detected in a novel's story bible:\n\n")
	for _, issue := range issues {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", issue.Severity, issue.Type, issue.Description)
	}
	b.WriteString("\nPrioritize them for the author: which to fix first and why, in a short numbered list.")

	text, err := c.gen.GenerateText(ctx, ai.RoleResearch, b.String())
	if err != nil {
		log.Printf("WARNING: consistency analysis skipped: %v", err)
		return ""
	}
	return text
}

// --- Report document ---

// writeReport renders and persists the Markdown report for this run.
func (c *Checker) writeReport(projectRoot string, report *Report) (string, error) {
	data := templates.ReportData{
		GeneratedAt: bible.Now(),
		CheckType:   string(report.Params.CheckType),
		Scope:       describeScope(report.Params),
		Issues:      reportIssues(report.Issues),
		Fixed:       reportIssues(report.Fixed),
		Analysis:    report.Analysis,
	}

	doc, err := c.renderer.Render(templates.Report, data)
	if err != nil {
		return "", err
	}

	path := bible.ReportPath(projectRoot, timeNow().UnixMilli())
	if err := bible.WriteDocument(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

// describeScope summarizes the run's filters for the report header.
func describeScope(p Params) string {
	parts := []string{fmt.Sprintf("chapters %d..", p.StartChapter)}
	if p.EndChapter > 0 {
		parts[0] = fmt.Sprintf("chapters %d..%d", p.StartChapter, p.EndChapter)
	}
	if p.CharacterID > 0 {
		parts = append(parts, fmt.Sprintf("character %d", p.CharacterID))
	}
	if p.ThreadID > 0 {
		parts = append(parts, fmt.Sprintf("plot thread %d", p.ThreadID))
	}
	return strings.Join(parts, ", ")
}

// reportIssues converts issues to template rows.
func reportIssues(issues []Issue) []templates.ReportIssue {
	rows := make([]templates.ReportIssue, 0, len(issues))
	for _, i := range issues {
		rows = append(rows, templates.ReportIssue{
			Type:        string(i.Type),
			Severity:    string(i.Severity),
			Description: i.Description,
		})
	}
	return rows
}

// characterLabel names a character for issue descriptions, falling back
// to the raw ID for dangling references.
func characterLabel(b *bible.StoryBible, id int) string {
	if c := b.CharacterByID(id); c != nil {
		return c.Title
	}
	return fmt.Sprintf("character %d", id)
}
