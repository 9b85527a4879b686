package bible

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStore_LoadMissing(t *testing.T) {
	fs := NewFileStore()
	_, err := fs.Load(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load on empty dir = %v, want ErrNotFound", err)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore()

	b := NewStoryBible("Test Novel", "A. Author", GenreMystery, 90000)
	b.Characters = []Character{{
		Element:       NewElement(1, TypeCharacter, "Mara"),
		CharacterType: CharProtagonist,
		Traits:        []string{"stubborn", "loyal"},
		Arc:           &CharacterArc{StartingState: "Exiled"},
	}}
	b.Chapters = []Chapter{{
		Element:       NewElement(1, TypeChapter, "Arrival"),
		ChapterNumber: 1,
		Characters:    []int{1},
	}}

	if err := fs.Save(root, b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !fs.Exists(root) {
		t.Error("Exists = false after Save")
	}

	got, err := fs.Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Meta.Title != "Test Novel" || got.Meta.Genre != GenreMystery {
		t.Errorf("Meta = %+v", got.Meta)
	}
	c := got.CharacterByID(1)
	if c == nil {
		t.Fatal("character 1 missing after round trip")
	}
	if c.CharacterType != CharProtagonist || len(c.Traits) != 2 {
		t.Errorf("character fields lost: %+v", c)
	}
	if c.Arc == nil || c.Arc.StartingState != "Exiled" {
		t.Errorf("arc lost: %+v", c.Arc)
	}
}

func TestFileStore_SavePrettyPrints(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore()

	if err := fs.Save(root, NewStoryBible("T", "", GenreFantasy, 80000)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(BiblePath(root))
	if err != nil {
		t.Fatalf("read bible: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"meta\"") {
		t.Error("bible JSON not pretty-printed with 2-space indent")
	}
	if !strings.Contains(string(data), `"targetWordCount": 80000`) {
		t.Error("camelCase field targetWordCount missing")
	}
}

func TestFileStore_TransactBumpsUpdatedAt(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore()

	orig := timeNow
	t.Cleanup(func() { timeNow = orig })

	timeNow = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	if err := fs.Save(root, NewStoryBible("T", "", GenreFantasy, 80000)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	timeNow = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }
	updated, err := fs.Transact(root, func(b *StoryBible) error {
		b.Characters = append(b.Characters, Character{
			Element:       NewElement(1, TypeCharacter, "Mara"),
			CharacterType: CharMinor,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Transact: %v", err)
	}
	if updated.Meta.UpdatedAt != "2026-01-02T00:00:00Z" {
		t.Errorf("UpdatedAt = %s, want bumped", updated.Meta.UpdatedAt)
	}
	if updated.Meta.CreatedAt != "2026-01-01T00:00:00Z" {
		t.Errorf("CreatedAt = %s, want unchanged", updated.Meta.CreatedAt)
	}
}

func TestFileStore_TransactErrorDoesNotPersist(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore()
	if err := fs.Save(root, NewStoryBible("T", "", GenreFantasy, 80000)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	boom := errors.New("boom")
	_, err := fs.Transact(root, func(b *StoryBible) error {
		b.Characters = append(b.Characters, Character{Element: NewElement(1, TypeCharacter, "X")})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transact error = %v, want boom", err)
	}

	got, err := fs.Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Characters) != 0 {
		t.Error("failed transaction was persisted")
	}
}

func TestPathHelpers(t *testing.T) {
	root := "/p"

	if got := BiblePath(root); got != filepath.Join("/p", "story-bible", "story-bible.json") {
		t.Errorf("BiblePath = %s", got)
	}
	if got := ChapterPath(root, 7); !strings.HasSuffix(got, "chapter-07.md") {
		t.Errorf("ChapterPath(7) = %s, want chapter-07.md suffix", got)
	}
	if got := ChapterPath(root, 12); !strings.HasSuffix(got, "chapter-12.md") {
		t.Errorf("ChapterPath(12) = %s, want chapter-12.md suffix", got)
	}
	if got := CharacterPath(root, "Mara Voss"); !strings.HasSuffix(got, filepath.Join("characters", "mara-voss.md")) {
		t.Errorf("CharacterPath = %s", got)
	}
	if got := ReportPath(root, 1700000000000); !strings.HasSuffix(got, "consistency-report-1700000000000.md") {
		t.Errorf("ReportPath = %s", got)
	}
}

func TestWriteDocument_CreatesParentDirs(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "characters", "mara.md")

	if err := WriteDocument(path, "# Mara\n"); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "# Mara\n" {
		t.Errorf("content = %q", data)
	}
}
