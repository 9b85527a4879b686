package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/storyforge/chapter-master/internal/bible"
	"github.com/storyforge/chapter-master/internal/consistency"
	"github.com/storyforge/chapter-master/internal/factory"
	"github.com/storyforge/chapter-master/internal/status"
	"github.com/storyforge/chapter-master/internal/templates"
)

// --- Test helpers ---

// chdirTemp creates a temp dir and changes cwd to it so
// bible.FindProjectRoot resolves there. Returns the dir.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("setup: getwd: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("setup: chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	return tmpDir
}

// seedProject creates a temp project with a story bible and chdirs into it.
func seedProject(t *testing.T) string {
	t.Helper()
	tmpDir := chdirTemp(t)

	b := bible.NewStoryBible("Seeded Novel", "", bible.GenreFantasy, 80000)
	p := bible.Premise{
		Element: bible.NewElement(1, bible.TypePremise, "Seeded Novel"),
		Content: "A seeded premise.",
		Genre:   bible.GenreFantasy,
	}
	p.Status = bible.StatusCompleted
	b.Premise = &p

	if err := bible.NewFileStore().Save(tmpDir, b); err != nil {
		t.Fatalf("setup: save bible: %v", err)
	}
	return tmpDir
}

func newTestFactory(t *testing.T) *factory.Factory {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("setup: renderer: %v", err)
	}
	return factory.New(bible.NewFileStore(), renderer, nil)
}

func newTestChecker(t *testing.T) *consistency.Checker {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("setup: renderer: %v", err)
	}
	return consistency.NewChecker(bible.NewFileStore(), renderer, nil)
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- Argument helpers ---

func TestIntArg(t *testing.T) {
	req := makeReq(map[string]interface{}{
		"count":  float64(7),
		"string": "not a number",
	})

	if got := intArg(req, "count", 3); got != 7 {
		t.Errorf("intArg(count) = %d, want 7", got)
	}
	if got := intArg(req, "missing", 3); got != 3 {
		t.Errorf("intArg(missing) = %d, want default 3", got)
	}
	if got := intArg(req, "string", 3); got != 3 {
		t.Errorf("intArg(string) = %d, want default 3", got)
	}
}

func TestBoolArg(t *testing.T) {
	req := makeReq(map[string]interface{}{"flag": false})

	if got := boolArg(req, "flag", true); got {
		t.Error("boolArg(flag) = true, want explicit false")
	}
	if got := boolArg(req, "missing", true); !got {
		t.Error("boolArg(missing) = false, want default true")
	}
}

func TestIntListArg(t *testing.T) {
	req := makeReq(map[string]interface{}{
		"ids":   "1, 2,3",
		"junk":  "1,abc,-5,2",
		"empty": "  ",
	})

	if got := intListArg(req, "ids"); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("intListArg(ids) = %v", got)
	}
	if got := intListArg(req, "junk"); len(got) != 2 {
		t.Errorf("intListArg(junk) = %v, want non-numeric and non-positive entries skipped", got)
	}
	if got := intListArg(req, "empty"); got != nil {
		t.Errorf("intListArg(empty) = %v, want nil", got)
	}
}

func TestStringListArg(t *testing.T) {
	req := makeReq(map[string]interface{}{"items": "storm vs crossing, , betrayal"})

	got := stringListArg(req, "items")
	if len(got) != 2 || got[0] != "storm vs crossing" || got[1] != "betrayal" {
		t.Errorf("stringListArg = %v", got)
	}
}

// --- ParsePremiseTool ---

func TestParsePremiseTool_Handle_Success(t *testing.T) {
	tmpDir := chdirTemp(t)

	tool := NewParsePremiseTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{
		"premise": "The Last Lighthouse.\nA keeper discovers the light holds back the dark.",
	})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "Files written:") {
		t.Error("result should list the files written")
	}
	if !strings.Contains(text, "story_create_character") {
		t.Error("result should point to the next step")
	}

	if _, err := os.Stat(bible.BiblePath(tmpDir)); err != nil {
		t.Errorf("story bible not created: %v", err)
	}
}

func TestParsePremiseTool_Handle_FromFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	premisePath := filepath.Join(tmpDir, "premise.txt")
	if err := os.WriteFile(premisePath, []byte("Saltwater.\nA diver finds a drowned city."), 0o644); err != nil {
		t.Fatalf("write premise file: %v", err)
	}

	tool := NewParsePremiseTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{"premise_file": premisePath})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	b, err := bible.NewFileStore().Load(tmpDir)
	if err != nil {
		t.Fatalf("load bible: %v", err)
	}
	if b.Meta.Title != "Saltwater" {
		t.Errorf("Title = %q, want premise file's first line", b.Meta.Title)
	}
}

func TestParsePremiseTool_Handle_MissingPremise(t *testing.T) {
	chdirTemp(t)

	tool := NewParsePremiseTool(newTestFactory(t), nil)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("should return error when premise is missing")
	}
}

func TestParsePremiseTool_Handle_InvalidStructure(t *testing.T) {
	chdirTemp(t)

	tool := NewParsePremiseTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{
		"premise":        "A premise.",
		"structure_type": "five-act",
	})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("should return error for unknown structure type")
	}
}

func TestParsePremiseTool_Handle_RefusesOverwrite(t *testing.T) {
	seedProject(t)

	tool := NewParsePremiseTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{"premise": "Another premise."})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("should refuse to overwrite an existing story bible")
	}
}

// --- CreateCharacterTool ---

func TestCreateCharacterTool_Handle_Success(t *testing.T) {
	tmpDir := seedProject(t)

	tool := NewCreateCharacterTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{
		"name":           "Mara Voss",
		"character_type": "protagonist",
	})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	b, err := bible.NewFileStore().Load(tmpDir)
	if err != nil {
		t.Fatalf("load bible: %v", err)
	}
	if len(b.Characters) != 1 || b.Characters[0].CharacterType != bible.CharProtagonist {
		t.Errorf("Characters = %+v", b.Characters)
	}
}

func TestCreateCharacterTool_Handle_MissingName(t *testing.T) {
	seedProject(t)

	tool := NewCreateCharacterTool(newTestFactory(t), nil)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("should return error when name is missing")
	}
}

func TestCreateCharacterTool_Handle_InvalidType(t *testing.T) {
	seedProject(t)

	tool := NewCreateCharacterTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{
		"name":           "Mara",
		"character_type": "villain",
	})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("should return error for out-of-enum character type")
	}
}

func TestCreateCharacterTool_Handle_NoBible(t *testing.T) {
	chdirTemp(t)

	tool := NewCreateCharacterTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{"name": "Mara"})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("should return error without a story bible")
	}
	if got := getResultText(result); got != noBibleAdvice {
		t.Errorf("advisory = %q, want %q", got, noBibleAdvice)
	}
}

// --- GenerateChapterTool ---

func TestGenerateChapterTool_Handle_Success(t *testing.T) {
	tmpDir := seedProject(t)

	tool := NewGenerateChapterTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{
		"title":   "Arrival",
		"purpose": "Establish the island.",
	})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	b, err := bible.NewFileStore().Load(tmpDir)
	if err != nil {
		t.Fatalf("load bible: %v", err)
	}
	if len(b.Chapters) != 1 || b.Chapters[0].ChapterNumber != 1 {
		t.Fatalf("Chapters = %+v", b.Chapters)
	}
	if len(b.Scenes) == 0 {
		t.Error("default scene generation produced no scenes")
	}
}

func TestGenerateChapterTool_Handle_NoBible(t *testing.T) {
	chdirTemp(t)

	tool := NewGenerateChapterTool(newTestFactory(t), nil)
	req := makeReq(map[string]interface{}{"title": "Arrival"})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("should return error without a story bible")
	}
	if got := getResultText(result); got != noBibleAdvice {
		t.Errorf("advisory = %q, want %q", got, noBibleAdvice)
	}
}

// --- CheckConsistencyTool ---

func TestCheckConsistencyTool_Handle_ReportsIssues(t *testing.T) {
	tmpDir := seedProject(t)

	// Add a chapter numbering gap so the check has something to find.
	_, err := bible.NewFileStore().Transact(tmpDir, func(b *bible.StoryBible) error {
		b.Chapters = []bible.Chapter{
			{Element: bible.NewElement(1, bible.TypeChapter, "One"), ChapterNumber: 1},
			{Element: bible.NewElement(2, bible.TypeChapter, "Four"), ChapterNumber: 4},
		}
		return nil
	})
	if err != nil {
		t.Fatalf("setup: transact: %v", err)
	}

	tool := NewCheckConsistencyTool(newTestChecker(t), nil)
	req := makeReq(map[string]interface{}{
		"check_type":      "timeline",
		"generate_report": false,
	})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "chapter-sequence-gap") {
		t.Errorf("result should report the numbering gap: %s", text)
	}
}

func TestCheckConsistencyTool_Handle_CleanBible(t *testing.T) {
	seedProject(t)

	tool := NewCheckConsistencyTool(newTestChecker(t), nil)
	req := makeReq(map[string]interface{}{"generate_report": false})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "No consistency issues found") {
		t.Errorf("clean bible should report no issues: %s", text)
	}
}

func TestCheckConsistencyTool_Handle_InvalidCheckType(t *testing.T) {
	seedProject(t)

	tool := NewCheckConsistencyTool(newTestChecker(t), nil)
	req := makeReq(map[string]interface{}{"check_type": "vibes"})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("should return error for unknown check type")
	}
}

// --- StatusTool ---

func TestStatusTool_Handle_Summary(t *testing.T) {
	seedProject(t)

	tool := NewStatusTool(status.NewReporter(bible.NewFileStore()))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "Seeded Novel") {
		t.Error("status should contain the project title")
	}
	if !strings.Contains(text, "Next:") {
		t.Error("status should contain the next action by default")
	}
}

func TestStatusTool_Handle_InvalidFormat(t *testing.T) {
	seedProject(t)

	tool := NewStatusTool(status.NewReporter(bible.NewFileStore()))
	req := makeReq(map[string]interface{}{"format": "yaml"})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("should return error for unknown format")
	}
}

func TestStatusTool_Handle_NoBible(t *testing.T) {
	chdirTemp(t)

	tool := NewStatusTool(status.NewReporter(bible.NewFileStore()))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("should return error without a story bible")
	}
	if got := getResultText(result); got != noBibleAdvice {
		t.Errorf("advisory = %q, want %q", got, noBibleAdvice)
	}
}

// --- NextChapterTool ---

func TestNextChapterTool_Handle_Recommends(t *testing.T) {
	tmpDir := seedProject(t)

	_, err := bible.NewFileStore().Transact(tmpDir, func(b *bible.StoryBible) error {
		b.Chapters = []bible.Chapter{
			{Element: bible.NewElement(1, bible.TypeChapter, "Arrival"), ChapterNumber: 1},
		}
		return nil
	})
	if err != nil {
		t.Fatalf("setup: transact: %v", err)
	}

	tool := NewNextChapterTool(status.NewReporter(bible.NewFileStore()))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Work on chapter 1 next") {
		t.Errorf("recommendation = %s", text)
	}
	if !strings.Contains(text, "Arrival") {
		t.Error("recommendation should name the chapter")
	}
}

func TestNextChapterTool_Handle_NoChapters(t *testing.T) {
	seedProject(t)

	tool := NewNextChapterTool(status.NewReporter(bible.NewFileStore()))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("no-chapters case should not be a tool error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "No chapters exist yet") {
		t.Errorf("reason = %s", text)
	}
}

// --- Definitions ---

func TestDefinitions_ToolNames(t *testing.T) {
	f := newTestFactory(t)
	reporter := status.NewReporter(bible.NewFileStore())

	tests := []struct {
		def  mcp.Tool
		want string
	}{
		{NewParsePremiseTool(f, nil).Definition(), "story_parse_premise"},
		{NewCreateCharacterTool(f, nil).Definition(), "story_create_character"},
		{NewGenerateChapterTool(f, nil).Definition(), "story_generate_chapter"},
		{NewCheckConsistencyTool(newTestChecker(t), nil).Definition(), "story_check_consistency"},
		{NewStatusTool(reporter).Definition(), "story_status"},
		{NewNextChapterTool(reporter).Definition(), "story_next_chapter"},
	}
	for _, tt := range tests {
		if tt.def.Name != tt.want {
			t.Errorf("tool name = %s, want %s", tt.def.Name, tt.want)
		}
	}
}
