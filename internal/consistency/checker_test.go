package consistency

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/storyforge/chapter-master/internal/ai"
	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/templates"
)

func newTestChecker(t *testing.T, gen ai.Generator) (*Checker, string) {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return NewChecker(bible.NewFileStore(), renderer, gen), t.TempDir()
}

func saveBible(t *testing.T, root string, b *bible.StoryBible) {
	t.Helper()
	if err := bible.NewFileStore().Save(root, b); err != nil {
		t.Fatalf("saving bible: %v", err)
	}
}

func emptyBible() *bible.StoryBible {
	return bible.NewStoryBible("T", "", bible.GenreFantasy, 80000)
}

func issuesOfType(issues []Issue, typ IssueType) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Type == typ {
			out = append(out, i)
		}
	}
	return out
}

// --- Character rules ---

func TestRun_CharacterUnlisted(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	b.Characters = []bible.Character{{
		Element:       bible.NewElement(1, bible.TypeCharacter, "Mara"),
		CharacterType: bible.CharProtagonist,
		Arc:           &bible.CharacterArc{StartingState: "Adrift"},
	}}
	b.Chapters = []bible.Chapter{{
		Element:       bible.NewElement(1, bible.TypeChapter, "One"),
		ChapterNumber: 1,
	}}
	b.Scenes = []bible.Scene{{
		Element:    bible.NewElement(1, bible.TypeScene, "Landfall"),
		SceneType:  bible.SceneAction,
		ChapterID:  1,
		Characters: []int{1},
	}}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckCharacter})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	unlisted := issuesOfType(report.Issues, IssueCharacterUnlisted)
	if len(unlisted) != 1 {
		t.Fatalf("character-unlisted issues = %d, want 1", len(unlisted))
	}
	issue := unlisted[0]
	if issue.Severity != SeverityModerate {
		t.Errorf("severity = %s, want moderate", issue.Severity)
	}
	if issue.ChapterID != 1 || issue.CharacterID != 1 {
		t.Errorf("issue refs = chapter %d, character %d", issue.ChapterID, issue.CharacterID)
	}
}

func TestRun_CharacterUnlistedAutoFix(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	b.Characters = []bible.Character{{
		Element:       bible.NewElement(1, bible.TypeCharacter, "Mara"),
		CharacterType: bible.CharProtagonist,
		Arc:           &bible.CharacterArc{StartingState: "Adrift"},
	}}
	b.Chapters = []bible.Chapter{{
		Element:       bible.NewElement(1, bible.TypeChapter, "One"),
		ChapterNumber: 1,
	}}
	b.Scenes = []bible.Scene{{
		Element:    bible.NewElement(1, bible.TypeScene, "Landfall"),
		SceneType:  bible.SceneAction,
		ChapterID:  1,
		Characters: []int{1},
	}}
	saveBible(t, root, b)

	// Moderate issues are only eligible in aggressive mode.
	report, err := c.Run(context.Background(), root, Params{
		CheckType: CheckCharacter,
		AutoFix:   true,
		FixMode:   FixAggressive,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Fixed) != 1 {
		t.Fatalf("fixed = %d, want 1", len(report.Fixed))
	}
	if report.Fixed[0].FixedAt == "" || report.Fixed[0].FixMode != FixAggressive {
		t.Errorf("fix not tagged: %+v", report.Fixed[0])
	}

	// The fix is persisted and the re-check comes back clean.
	loaded, err := bible.NewFileStore().Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Chapters[0].ListsCharacter(1) {
		t.Error("fix not persisted to chapter character list")
	}

	recheck, err := c.Run(context.Background(), root, Params{CheckType: CheckCharacter})
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if n := len(issuesOfType(recheck.Issues, IssueCharacterUnlisted)); n != 0 {
		t.Errorf("character-unlisted after fix = %d, want 0", n)
	}
}

func TestRun_ConservativeModeSkipsModerate(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	b.Characters = []bible.Character{{
		Element:       bible.NewElement(1, bible.TypeCharacter, "Mara"),
		CharacterType: bible.CharMinor,
		Arc:           &bible.CharacterArc{StartingState: "Set"},
	}}
	b.Chapters = []bible.Chapter{{
		Element:       bible.NewElement(1, bible.TypeChapter, "One"),
		ChapterNumber: 1,
	}}
	b.Scenes = []bible.Scene{{
		Element:    bible.NewElement(1, bible.TypeScene, "S"),
		SceneType:  bible.SceneDialogue,
		ChapterID:  1,
		Characters: []int{1},
	}}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{
		CheckType: CheckCharacter,
		AutoFix:   true,
		FixMode:   FixConservative,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Fixed) != 0 {
		t.Errorf("conservative mode fixed %d moderate issues, want 0", len(report.Fixed))
	}
	loaded, _ := bible.NewFileStore().Load(root)
	if loaded.Chapters[0].ListsCharacter(1) {
		t.Error("bible mutated despite no eligible fixes")
	}
}

func TestRun_CharacterArcUndefined(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	b.Characters = []bible.Character{
		{
			Element:       bible.NewElement(1, bible.TypeCharacter, "Recurring"),
			CharacterType: bible.CharProtagonist,
			Arc:           &bible.CharacterArc{StartingState: bible.ArcPlaceholder},
		},
		{
			Element:       bible.NewElement(2, bible.TypeCharacter, "OneOff"),
			CharacterType: bible.CharMinor,
		},
	}
	b.Chapters = []bible.Chapter{
		{Element: bible.NewElement(1, bible.TypeChapter, "One"), ChapterNumber: 1, Characters: []int{1, 2}},
		{Element: bible.NewElement(2, bible.TypeChapter, "Two"), ChapterNumber: 2, Characters: []int{1}},
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckCharacter})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	undefined := issuesOfType(report.Issues, IssueCharacterArcUndefined)
	if len(undefined) != 1 {
		t.Fatalf("arc-undefined issues = %d, want 1 (only the recurring character)", len(undefined))
	}
	if undefined[0].CharacterID != 1 || undefined[0].Severity != SeverityMinor {
		t.Errorf("issue = %+v", undefined[0])
	}
}

// --- Plot rules ---

func TestRun_PlotThreadUnresolved(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	thread := bible.PlotThread{
		Element:    bible.NewElement(1, bible.TypePlotThread, "The Debt"),
		ThreadType: bible.ThreadMain,
	}
	thread.Status = bible.StatusCompleted
	b.PlotThreads = []bible.PlotThread{thread}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckPlot})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := len(issuesOfType(report.Issues, IssuePlotThreadUnresolved)); n != 1 {
		t.Fatalf("unresolved issues = %d, want 1", n)
	}

	// Adding a resolution removes the issue on re-check.
	_, err = bible.NewFileStore().Transact(root, func(b *bible.StoryBible) error {
		b.PlotThreads[0].Resolution = "Paid in full"
		return nil
	})
	if err != nil {
		t.Fatalf("Transact: %v", err)
	}

	recheck, err := c.Run(context.Background(), root, Params{CheckType: CheckPlot})
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if n := len(issuesOfType(recheck.Issues, IssuePlotThreadUnresolved)); n != 0 {
		t.Errorf("unresolved issues after resolution = %d, want 0", n)
	}
}

func TestRun_PlotThreadUnused(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	b.PlotThreads = []bible.PlotThread{
		{Element: bible.NewElement(1, bible.TypePlotThread, "The Debt"), ThreadType: bible.ThreadMain},
		{Element: bible.NewElement(2, bible.TypePlotThread, "The Letters"), ThreadType: bible.ThreadSubplot},
		{Element: bible.NewElement(3, bible.TypePlotThread, "The Storm"), ThreadType: bible.ThreadSubplot},
	}
	b.Chapters = []bible.Chapter{
		// Thread 1 referenced by ID; thread 2 referenced by title mention.
		{Element: bible.NewElement(1, bible.TypeChapter, "One"), ChapterNumber: 1,
			PlotThreads: []int{1}, PlotAdvancement: "Mara finds the letters in the attic."},
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckPlot})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	unused := issuesOfType(report.Issues, IssuePlotThreadUnused)
	if len(unused) != 1 {
		t.Fatalf("unused issues = %d, want 1 (only The Storm)", len(unused))
	}
	if unused[0].ThreadID != 3 {
		t.Errorf("unused ThreadID = %d, want 3", unused[0].ThreadID)
	}
}

// --- Timeline rules ---

func TestRun_DuplicateAndGap(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	for i, n := range []int{1, 2, 2, 4} {
		b.Chapters = append(b.Chapters, bible.Chapter{
			Element:       bible.NewElement(i+1, bible.TypeChapter, "Ch"),
			ChapterNumber: n,
		})
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckTimeline})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	dups := issuesOfType(report.Issues, IssueDuplicateChapterNumber)
	if len(dups) != 1 {
		t.Fatalf("duplicate issues = %d, want exactly 1", len(dups))
	}
	if dups[0].ChapterNumber != 2 || dups[0].Severity != SeverityCritical {
		t.Errorf("duplicate issue = %+v", dups[0])
	}

	gaps := issuesOfType(report.Issues, IssueChapterSequenceGap)
	if len(gaps) != 1 {
		t.Fatalf("gap issues = %d, want exactly 1", len(gaps))
	}
	if gaps[0].ChapterNumber != 2 || gaps[0].Severity != SeverityMinor {
		t.Errorf("gap issue = %+v", gaps[0])
	}
}

func TestRun_ChapterRangeScoping(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	for i, n := range []int{1, 3, 5} {
		b.Chapters = append(b.Chapters, bible.Chapter{
			Element:       bible.NewElement(i+1, bible.TypeChapter, "Ch"),
			ChapterNumber: n,
		})
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{
		CheckType:    CheckTimeline,
		StartChapter: 3,
		EndChapter:   5,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	gaps := issuesOfType(report.Issues, IssueChapterSequenceGap)
	if len(gaps) != 1 {
		t.Fatalf("gaps in scope = %d, want 1 (3 to 5 only)", len(gaps))
	}
	if gaps[0].ChapterNumber != 3 {
		t.Errorf("gap at = %d, want 3", gaps[0].ChapterNumber)
	}
}

// --- Style rules ---

func TestRun_POVUndefinedAggregate(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	b.Style = &bible.StyleGuide{POV: "third-limited"}
	b.Chapters = []bible.Chapter{
		{Element: bible.NewElement(1, bible.TypeChapter, "One"), ChapterNumber: 1},
		{Element: bible.NewElement(2, bible.TypeChapter, "Two"), ChapterNumber: 2, POV: 1},
		{Element: bible.NewElement(3, bible.TypeChapter, "Three"), ChapterNumber: 3},
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckStyle})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	pov := issuesOfType(report.Issues, IssuePOVUndefined)
	if len(pov) != 1 {
		t.Fatalf("pov issues = %d, want 1 aggregate issue", len(pov))
	}
	if pov[0].Count != 2 {
		t.Errorf("Count = %d, want 2 chapters without POV", pov[0].Count)
	}
}

func TestRun_StyleSilentWithoutConvention(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	b.Chapters = []bible.Chapter{
		{Element: bible.NewElement(1, bible.TypeChapter, "One"), ChapterNumber: 1},
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckStyle})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Errorf("issues = %d, want 0 when no style guide is set", len(report.Issues))
	}
}

// --- Analysis and report ---

type fakeGen struct {
	textFn func(role ai.Role, prompt string) (string, error)
}

func (g *fakeGen) GenerateText(ctx context.Context, role ai.Role, prompt string) (string, error) {
	return g.textFn(role, prompt)
}

func (g *fakeGen) GenerateJSON(ctx context.Context, role ai.Role, prompt string, out any) error {
	return errors.New("unexpected GenerateJSON call")
}

func TestRun_AnalysisFailureIsSwallowed(t *testing.T) {
	gen := &fakeGen{textFn: func(ai.Role, string) (string, error) {
		return "", errors.New("service down")
	}}
	c, root := newTestChecker(t, gen)

	b := emptyBible()
	for i, n := range []int{1, 3} {
		b.Chapters = append(b.Chapters, bible.Chapter{
			Element:       bible.NewElement(i+1, bible.TypeChapter, "Ch"),
			ChapterNumber: n,
		})
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{CheckType: CheckTimeline})
	if err != nil {
		t.Fatalf("Run must not fail on analysis errors: %v", err)
	}
	if report.Analysis != "" {
		t.Errorf("Analysis = %q, want empty on failure", report.Analysis)
	}
	if len(report.Issues) != 1 {
		t.Errorf("issues = %d, analysis failure must not alter the issue list", len(report.Issues))
	}
}

func TestRun_WritesReport(t *testing.T) {
	c, root := newTestChecker(t, nil)

	b := emptyBible()
	for i, n := range []int{1, 3} {
		b.Chapters = append(b.Chapters, bible.Chapter{
			Element:       bible.NewElement(i+1, bible.TypeChapter, "Ch"),
			ChapterNumber: n,
		})
	}
	saveBible(t, root, b)

	report, err := c.Run(context.Background(), root, Params{
		CheckType:      CheckTimeline,
		GenerateReport: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ReportPath == "" {
		t.Fatal("ReportPath empty")
	}

	data, err := os.ReadFile(report.ReportPath)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "chapter-sequence-gap") {
		t.Error("report does not mention the detected issue")
	}
}

// --- Params ---

func TestParams_Validation(t *testing.T) {
	c, root := newTestChecker(t, nil)
	saveBible(t, root, emptyBible())

	if _, err := c.Run(context.Background(), root, Params{CheckType: "vibes"}); err == nil {
		t.Error("expected error for invalid check type")
	}
	if _, err := c.Run(context.Background(), root, Params{FixMode: "brutal"}); err == nil {
		t.Error("expected error for invalid fix mode")
	}
}

func TestRun_MissingBible(t *testing.T) {
	c, root := newTestChecker(t, nil)
	_, err := c.Run(context.Background(), root, Params{})
	if !errors.Is(err, bible.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
