package bible

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// BibleDir is the subdirectory under the project root where the
	// story bible and its Markdown mirrors live.
	BibleDir = "story-bible"
	// BibleFile is the filename of the aggregate JSON document.
	BibleFile = "story-bible.json"
	// CharactersDir holds one Markdown file per character.
	CharactersDir = "characters"
	// ChaptersDir holds one Markdown file per chapter.
	ChaptersDir = "chapters"
)

// ErrNotFound indicates no story bible exists at the conventional path.
// Every operation except parse-premise surfaces this to the caller with
// the advisory to run parse-premise first.
var ErrNotFound = errors.New("no story bible found")

// ErrNoChanges aborts a Transact without writing: returned by the
// transaction function when it determined nothing needs to change.
var ErrNoChanges = errors.New("no changes to persist")

// Store defines the persistence interface for the story bible document.
// Abstracted for testability (DIP).
type Store interface {
	Exists(projectRoot string) bool
	Load(projectRoot string) (*StoryBible, error)
	Save(projectRoot string, b *StoryBible) error
	Transact(projectRoot string, fn func(*StoryBible) error) (*StoryBible, error)
}

// FileStore implements Store using the local filesystem.
type FileStore struct{}

// NewFileStore creates a filesystem-backed story bible store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// BiblePath returns the absolute path to story-bible/story-bible.json.
func BiblePath(projectRoot string) string {
	return filepath.Join(projectRoot, BibleDir, BibleFile)
}

// PremisePath returns the path to the premise's Markdown mirror.
func PremisePath(projectRoot string) string {
	return filepath.Join(projectRoot, BibleDir, "premise.md")
}

// OutlinePath returns the path to the outline's Markdown mirror.
func OutlinePath(projectRoot string) string {
	return filepath.Join(projectRoot, BibleDir, "outline.md")
}

// ReportPath returns the path for a consistency report stamped with a
// unix-millisecond timestamp.
func ReportPath(projectRoot string, unixMillis int64) string {
	return filepath.Join(projectRoot, BibleDir, fmt.Sprintf("consistency-report-%d.md", unixMillis))
}

// CharacterPath returns the path to a character's Markdown document.
func CharacterPath(projectRoot, name string) string {
	return filepath.Join(projectRoot, CharactersDir, Slugify(name)+".md")
}

// ChapterPath returns the path to a chapter's Markdown document,
// zero-padding the chapter number to two digits.
func ChapterPath(projectRoot string, chapterNumber int) string {
	return filepath.Join(projectRoot, ChaptersDir, fmt.Sprintf("chapter-%02d.md", chapterNumber))
}

// Exists reports whether a story bible document is present.
func (fs *FileStore) Exists(projectRoot string) bool {
	_, err := os.Stat(BiblePath(projectRoot))
	return err == nil
}

// Load reads and parses the story bible document.
// Returns ErrNotFound if no document exists at the conventional path.
func (fs *FileStore) Load(projectRoot string) (*StoryBible, error) {
	data, err := os.ReadFile(BiblePath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading story bible: %w", err)
	}

	var b StoryBible
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", BibleFile, err)
	}
	return &b, nil
}

// Save serializes and overwrites the story bible document.
// Pretty-printed with 2-space indentation; last-write-wins, no locking —
// the design assumes one invocation completes before the next begins.
func (fs *FileStore) Save(projectRoot string, b *StoryBible) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling story bible: %w", err)
	}

	dir := filepath.Join(projectRoot, BibleDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", BibleDir, err)
	}

	if err := os.WriteFile(BiblePath(projectRoot), data, 0o644); err != nil {
		return fmt.Errorf("writing story bible: %w", err)
	}
	return nil
}

// Transact is the single chokepoint for every mutation: it loads the
// document, applies fn, bumps meta.updatedAt, and saves. If fn returns
// an error nothing is written and the document stays in its prior
// consistent state.
func (fs *FileStore) Transact(projectRoot string, fn func(*StoryBible) error) (*StoryBible, error) {
	b, err := fs.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	if err := fn(b); err != nil {
		return nil, err
	}

	b.Meta.UpdatedAt = Now()
	if err := fs.Save(projectRoot, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteDocument writes a Markdown mirror document, creating parent
// directories as needed.
func WriteDocument(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// FindProjectRoot walks up from the current working directory looking
// for an existing story-bible/story-bible.json. If none is found,
// returns cwd. This allows tools to work from any subdirectory of the
// project.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		if _, err := os.Stat(BiblePath(current)); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached filesystem root, no project found.
			// Return original cwd — the caller decides what to do.
			return dir, nil
		}
		current = parent
	}
}
