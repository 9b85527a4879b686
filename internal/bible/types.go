// Package bible defines the story-bible data model: the aggregate JSON
// document that holds every story element for one project (premise,
// outline, characters, chapters, scenes, plot threads), plus the schema
// contracts that validate each element.
//
// The package follows the same design principles as the rest of the server:
// - SRP: types, schema validation, and the file store live in separate files
// - DIP: Store is an interface; factories and the checker depend on the abstraction
// - Fail closed: an element that fails its schema contract is never persisted
package bible

import "fmt"

// --- Element type enum ---

// ElementType discriminates the six kinds of story elements.
type ElementType string

const (
	TypePremise    ElementType = "premise"
	TypeOutline    ElementType = "outline"
	TypeCharacter  ElementType = "character"
	TypeChapter    ElementType = "chapter"
	TypeScene      ElementType = "scene"
	TypePlotThread ElementType = "plot-thread"
)

// --- Status enum ---

// Status tracks the editorial lifecycle of an element.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusInProgress    Status = "in-progress"
	StatusReview        Status = "review"
	StatusNeedsRevision Status = "needs-revision"
	StatusCompleted     Status = "completed"
	StatusPublished     Status = "published"
)

// validStatuses is the set of allowed statuses.
var validStatuses = map[Status]bool{
	StatusDraft:         true,
	StatusInProgress:    true,
	StatusReview:        true,
	StatusNeedsRevision: true,
	StatusCompleted:     true,
	StatusPublished:     true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid status %q: must be one of: draft, in-progress, review, needs-revision, completed, published", s)
	}
	return nil
}

// --- Priority enum ---

// Priority ranks an element's importance for planning purposes.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// --- Genre enum ---

// Genre is one of the nine fixed genres a premise may declare.
type Genre string

const (
	GenreFantasy    Genre = "fantasy"
	GenreSciFi      Genre = "science-fiction"
	GenreMystery    Genre = "mystery"
	GenreThriller   Genre = "thriller"
	GenreRomance    Genre = "romance"
	GenreHorror     Genre = "horror"
	GenreHistorical Genre = "historical-fiction"
	GenreLiterary   Genre = "literary-fiction"
	GenreYoungAdult Genre = "young-adult"
)

// Genres lists all valid genres in declaration order.
var Genres = []Genre{
	GenreFantasy, GenreSciFi, GenreMystery, GenreThriller, GenreRomance,
	GenreHorror, GenreHistorical, GenreLiterary, GenreYoungAdult,
}

// ValidateGenre returns an error if the genre is not one of the nine.
func ValidateGenre(g Genre) error {
	for _, valid := range Genres {
		if g == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid genre %q: must be one of: fantasy, science-fiction, mystery, thriller, romance, horror, historical-fiction, literary-fiction, young-adult", g)
}

// --- Structure type enum ---

// StructureType names the narrative framework an outline follows.
type StructureType string

const (
	StructureSaveTheCat    StructureType = "save-the-cat"
	StructureHeroJourney   StructureType = "hero-journey"
	StructureThreeAct      StructureType = "three-act"
	StructureSevenPoint    StructureType = "seven-point"
	StructureGenreSpecific StructureType = "genre-specific"
)

// ValidateStructureType returns an error if t is not a known structure.
func ValidateStructureType(t StructureType) error {
	switch t {
	case StructureSaveTheCat, StructureHeroJourney, StructureThreeAct,
		StructureSevenPoint, StructureGenreSpecific:
		return nil
	}
	return fmt.Errorf("invalid structure type %q: must be one of: save-the-cat, hero-journey, three-act, seven-point, genre-specific", t)
}

// --- Character type enum ---

// CharacterType classifies a character's narrative role.
type CharacterType string

const (
	CharProtagonist CharacterType = "protagonist"
	CharAntagonist  CharacterType = "antagonist"
	CharSupporting  CharacterType = "supporting"
	CharMinor       CharacterType = "minor"
)

// ValidateCharacterType returns an error if t is not a known role.
func ValidateCharacterType(t CharacterType) error {
	switch t {
	case CharProtagonist, CharAntagonist, CharSupporting, CharMinor:
		return nil
	}
	return fmt.Errorf("invalid character type %q: must be one of: protagonist, antagonist, supporting, minor", t)
}

// --- Scene type enum ---

// SceneType classifies the dominant mode of a scene.
type SceneType string

const (
	SceneAction     SceneType = "action"
	SceneDialogue   SceneType = "dialogue"
	SceneExposition SceneType = "exposition"
	SceneClimax     SceneType = "climax"
	SceneTransition SceneType = "transition"
	SceneFlashback  SceneType = "flashback"
)

// --- Thread type enum ---

// ThreadType classifies a plot thread's narrative weight.
type ThreadType string

const (
	ThreadMain         ThreadType = "main"
	ThreadSubplot      ThreadType = "subplot"
	ThreadCharacterArc ThreadType = "character-arc"
)

// --- Base element ---

// Element is the shape every story element shares. Type-specific structs
// embed it. Timestamps are ISO-8601 strings, set at creation and bumped
// on every mutation.
type Element struct {
	ID           int         `json:"id" validate:"required,gt=0"`
	Type         ElementType `json:"type" validate:"required,oneof=premise outline character chapter scene plot-thread"`
	Title        string      `json:"title" validate:"required"`
	Description  string      `json:"description"`
	Status       Status      `json:"status" validate:"required,oneof=draft in-progress review needs-revision completed published"`
	Priority     Priority    `json:"priority" validate:"required,oneof=high medium low"`
	Dependencies []int       `json:"dependencies,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    string      `json:"createdAt" validate:"required"`
	UpdatedAt    string      `json:"updatedAt" validate:"required"`
}

// NewElement assembles a base element with defaults: draft status,
// medium priority, both timestamps set to now.
func NewElement(id int, t ElementType, title string) Element {
	now := Now()
	return Element{
		ID:        id,
		Type:      t,
		Title:     title,
		Status:    StatusDraft,
		Priority:  PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the element's UpdatedAt timestamp.
func (e *Element) Touch() {
	e.UpdatedAt = Now()
}

// --- Premise ---

// Premise is the root creative statement of the novel.
type Premise struct {
	Element
	Content         string   `json:"content" validate:"required"`
	Genre           Genre    `json:"genre" validate:"required,oneof=fantasy science-fiction mystery thriller romance horror historical-fiction literary-fiction young-adult"`
	TargetAudience  string   `json:"targetAudience,omitempty"`
	Themes          []string `json:"themes,omitempty"`
	WordCountTarget int      `json:"wordCountTarget,omitempty" validate:"omitempty,gt=0"`
}

// --- Outline ---

// Act is one structural unit of an outline, referencing its chapters by ID.
type Act struct {
	Number   int    `json:"number" validate:"required,gt=0"`
	Title    string `json:"title" validate:"required"`
	Summary  string `json:"summary,omitempty"`
	Chapters []int  `json:"chapters,omitempty"`
}

// PacingBeats names the five structural beats an outline may pin down.
type PacingBeats struct {
	OpeningHook      string `json:"openingHook,omitempty"`
	IncitingIncident string `json:"incitingIncident,omitempty"`
	Midpoint         string `json:"midpoint,omitempty"`
	Climax           string `json:"climax,omitempty"`
	Resolution       string `json:"resolution,omitempty"`
}

// Outline describes the novel's structure.
type Outline struct {
	Element
	StructureType StructureType `json:"structureType" validate:"required,oneof=save-the-cat hero-journey three-act seven-point genre-specific"`
	Acts          []Act         `json:"acts,omitempty" validate:"omitempty,dive"`
	PlotThreads   []int         `json:"plotThreads,omitempty"`
	CharacterArcs []int         `json:"characterArcs,omitempty"`
	Pacing        *PacingBeats  `json:"pacing,omitempty"`
}

// --- Character ---

// Relationship links a character to another by ID with a free-text label.
type Relationship struct {
	CharacterID  int    `json:"characterId" validate:"required,gt=0"`
	Relationship string `json:"relationship" validate:"required"`
}

// Biography holds a character's background facts.
type Biography struct {
	Age           int            `json:"age,omitempty"`
	Background    string         `json:"background,omitempty"`
	Occupation    string         `json:"occupation,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty" validate:"omitempty,dive"`
}

// Psychology holds a character's inner life as string sets.
type Psychology struct {
	Motivations []string `json:"motivations,omitempty"`
	Fears       []string `json:"fears,omitempty"`
	Goals       []string `json:"goals,omitempty"`
	Flaws       []string `json:"flaws,omitempty"`
	Strengths   []string `json:"strengths,omitempty"`
}

// CharacterArc tracks a character's transformation across the novel.
type CharacterArc struct {
	StartingState string   `json:"startingState,omitempty"`
	MidpointState string   `json:"midpointState,omitempty"`
	EndingState   string   `json:"endingState,omitempty"`
	KeyMoments    []string `json:"keyMoments,omitempty"`
}

// Voice captures how a character speaks.
type Voice struct {
	SpeechPatterns      string   `json:"speechPatterns,omitempty"`
	Vocabulary          string   `json:"vocabulary,omitempty"`
	Tone                string   `json:"tone,omitempty"`
	DistinctiveFeatures []string `json:"distinctiveFeatures,omitempty"`
}

// Character is a person in the story.
type Character struct {
	Element
	CharacterType CharacterType `json:"characterType" validate:"required,oneof=protagonist antagonist supporting minor"`
	Biography     *Biography    `json:"biography,omitempty"`
	Psychology    *Psychology   `json:"psychology,omitempty"`
	Arc           *CharacterArc `json:"arc,omitempty"`
	Voice         *Voice        `json:"voice,omitempty"`
	Appearance    string        `json:"appearance,omitempty"`
	Traits        []string      `json:"traits,omitempty"`
}

// ArcPlaceholder is the literal text the consistency checker treats as
// an undefined arc, alongside the empty string.
const ArcPlaceholder = "To be developed"

// HasDefinedArc reports whether the character's arc summary is filled in
// with something other than the placeholder.
func (c *Character) HasDefinedArc() bool {
	if c.Arc == nil {
		return false
	}
	return c.Arc.StartingState != "" && c.Arc.StartingState != ArcPlaceholder
}

// --- Chapter ---

// CharacterMoment records a character's development within a chapter.
type CharacterMoment struct {
	CharacterID int    `json:"characterId" validate:"required,gt=0"`
	Development string `json:"development" validate:"required"`
}

// Chapter is one chapter of the novel. ChapterNumber is expected to be
// contiguous and unique but the schema does not enforce it — gaps and
// duplicates are what the consistency checker's timeline rules detect.
type Chapter struct {
	Element
	ChapterNumber    int               `json:"chapterNumber" validate:"required,gt=0"`
	Scenes           []int             `json:"scenes,omitempty"`
	Characters       []int             `json:"characters,omitempty"`
	PlotThreads      []int             `json:"plotThreads,omitempty"`
	Purpose          string            `json:"purpose,omitempty"`
	Conflicts        []string          `json:"conflicts,omitempty"`
	CharacterMoments []CharacterMoment `json:"characterMoments,omitempty" validate:"omitempty,dive"`
	PlotAdvancement  string            `json:"plotAdvancement,omitempty"`
	WordCountTarget  int               `json:"wordCountTarget,omitempty" validate:"omitempty,gt=0"`
	POV              int               `json:"pov,omitempty"`
	Content          string            `json:"content,omitempty"`
}

// ListsCharacter reports whether the chapter's character list contains id.
func (c *Chapter) ListsCharacter(id int) bool {
	for _, cid := range c.Characters {
		if cid == id {
			return true
		}
	}
	return false
}

// ListsThread reports whether the chapter references the plot thread id.
func (c *Chapter) ListsThread(id int) bool {
	for _, tid := range c.PlotThreads {
		if tid == id {
			return true
		}
	}
	return false
}

// --- Scene ---

// Scene is one scene within a chapter. ChapterID is a many-to-one
// relation enforced by convention, not schema.
type Scene struct {
	Element
	SceneType  SceneType `json:"sceneType" validate:"required,oneof=action dialogue exposition climax transition flashback"`
	ChapterID  int       `json:"chapterId" validate:"required,gt=0"`
	Characters []int     `json:"characters,omitempty"`
	Setting    string    `json:"setting,omitempty"`
	Purpose    string    `json:"purpose,omitempty"`
	Conflict   string    `json:"conflict,omitempty"`
	Dialogue   bool      `json:"dialogue,omitempty"`
	Action     bool      `json:"action,omitempty"`
	POV        int       `json:"pov,omitempty"`
	Content    string    `json:"content,omitempty"`
	Beats      []string  `json:"beats,omitempty"`
}

// --- Plot thread ---

// PlotThread tracks one narrative thread from introduction to resolution.
type PlotThread struct {
	Element
	ThreadType   ThreadType `json:"threadType" validate:"required,oneof=main subplot character-arc"`
	Introduction string     `json:"introduction,omitempty"`
	Development  []string   `json:"development,omitempty"`
	Resolution   string     `json:"resolution,omitempty"`
	Characters   []int      `json:"characters,omitempty"`
	Chapters     []int      `json:"chapters,omitempty"`
}

// --- Story bible (aggregate root) ---

// Meta holds project-level metadata for the story bible.
type Meta struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author,omitempty"`
	Genre           Genre  `json:"genre,omitempty" validate:"omitempty,oneof=fantasy science-fiction mystery thriller romance horror historical-fiction literary-fiction young-adult"`
	TargetWordCount int    `json:"targetWordCount,omitempty" validate:"omitempty,gt=0"`
	CreatedAt       string `json:"createdAt" validate:"required"`
	UpdatedAt       string `json:"updatedAt" validate:"required"`
	Version         string `json:"version" validate:"required"`
}

// StyleGuide records the novel's stylistic conventions. The consistency
// checker's style rules only fire when the relevant convention is set.
type StyleGuide struct {
	Voice string `json:"voice,omitempty"`
	Tense string `json:"tense,omitempty"`
	POV   string `json:"pov,omitempty"`
	Tone  string `json:"tone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// StoryBible is the single aggregate document holding all story elements
// for one project. There is exactly one per project, identified by its
// persisted location; every factory reads it, mutates it, and writes it
// back as one logical transaction.
type StoryBible struct {
	Meta        Meta         `json:"meta" validate:"required"`
	Premise     *Premise     `json:"premise,omitempty"`
	Outline     *Outline     `json:"outline,omitempty"`
	Characters  []Character  `json:"characters,omitempty"`
	Chapters    []Chapter    `json:"chapters,omitempty"`
	Scenes      []Scene      `json:"scenes,omitempty"`
	PlotThreads []PlotThread `json:"plotThreads,omitempty"`
	Research    []string     `json:"research,omitempty"`
	Style       *StyleGuide  `json:"style,omitempty"`
}

// CurrentVersion is the document format version written into Meta.
const CurrentVersion = "1.0.0"

// NewStoryBible creates an empty story bible with metadata filled in.
func NewStoryBible(title, author string, genre Genre, targetWordCount int) *StoryBible {
	now := Now()
	return &StoryBible{
		Meta: Meta{
			Title:           title,
			Author:          author,
			Genre:           genre,
			TargetWordCount: targetWordCount,
			CreatedAt:       now,
			UpdatedAt:       now,
			Version:         CurrentVersion,
		},
	}
}

// --- ID assignment ---
//
// IDs are unique within their own collection and assigned as
// max(existing)+1, defaulting to 1 for an empty collection. They are
// never reused: collections are append-only in the core (no deletion
// operation exists), so max+1 cannot collide.

// NextID computes the next free ID for the given element collection.
// Premise and outline are singletons and always get ID 1.
func (b *StoryBible) NextID(t ElementType) int {
	max := 0
	switch t {
	case TypeCharacter:
		for _, c := range b.Characters {
			if c.ID > max {
				max = c.ID
			}
		}
	case TypeChapter:
		for _, c := range b.Chapters {
			if c.ID > max {
				max = c.ID
			}
		}
	case TypeScene:
		for _, s := range b.Scenes {
			if s.ID > max {
				max = s.ID
			}
		}
	case TypePlotThread:
		for _, p := range b.PlotThreads {
			if p.ID > max {
				max = p.ID
			}
		}
	case TypePremise, TypeOutline:
		return 1
	}
	return max + 1
}

// --- Lookup helpers ---

// CharacterByID returns a pointer into the Characters slice, or nil.
func (b *StoryBible) CharacterByID(id int) *Character {
	for i := range b.Characters {
		if b.Characters[i].ID == id {
			return &b.Characters[i]
		}
	}
	return nil
}

// ChapterByID returns a pointer into the Chapters slice, or nil.
func (b *StoryBible) ChapterByID(id int) *Chapter {
	for i := range b.Chapters {
		if b.Chapters[i].ID == id {
			return &b.Chapters[i]
		}
	}
	return nil
}

// ChapterByNumber returns the first chapter with the given number, or nil.
func (b *StoryBible) ChapterByNumber(n int) *Chapter {
	for i := range b.Chapters {
		if b.Chapters[i].ChapterNumber == n {
			return &b.Chapters[i]
		}
	}
	return nil
}

// SceneByID returns a pointer into the Scenes slice, or nil.
func (b *StoryBible) SceneByID(id int) *Scene {
	for i := range b.Scenes {
		if b.Scenes[i].ID == id {
			return &b.Scenes[i]
		}
	}
	return nil
}

// ThreadByID returns a pointer into the PlotThreads slice, or nil.
func (b *StoryBible) ThreadByID(id int) *PlotThread {
	for i := range b.PlotThreads {
		if b.PlotThreads[i].ID == id {
			return &b.PlotThreads[i]
		}
	}
	return nil
}

// ScenesForChapter returns all scenes whose ChapterID matches the chapter.
func (b *StoryBible) ScenesForChapter(chapterID int) []Scene {
	var result []Scene
	for _, s := range b.Scenes {
		if s.ChapterID == chapterID {
			result = append(result, s)
		}
	}
	return result
}

// --- Element hierarchy ---

// Hierarchy defines the parent/child navigation map between element
// types. It exists for tooling only — nothing enforces it.
var Hierarchy = map[ElementType][]ElementType{
	TypePremise: {TypeOutline},
	TypeOutline: {TypeCharacter, TypeChapter, TypePlotThread},
	TypeChapter: {TypeScene},
}
