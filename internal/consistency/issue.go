// Package consistency implements the rule-based consistency checker:
// it cross-references chapters, scenes, characters, and plot threads in
// the story bible and produces typed issues, optionally auto-fixing a
// conservative subset and writing a report document.
package consistency

import "fmt"

// --- Check type enum ---

// CheckType selects which rule family to run.
type CheckType string

const (
	CheckCharacter CheckType = "character"
	CheckPlot      CheckType = "plot"
	CheckTimeline  CheckType = "timeline"
	CheckStyle     CheckType = "style"
	CheckAll       CheckType = "all"
)

// validCheckTypes is the set of allowed check types.
var validCheckTypes = map[CheckType]bool{
	CheckCharacter: true,
	CheckPlot:      true,
	CheckTimeline:  true,
	CheckStyle:     true,
	CheckAll:       true,
}

// ValidateCheckType returns an error if the check type is not recognized.
func ValidateCheckType(t CheckType) error {
	if !validCheckTypes[t] {
		return fmt.Errorf("invalid check type %q: must be one of: character, plot, timeline, style, all", t)
	}
	return nil
}

// --- Severity enum ---

// Severity ranks how serious an issue is.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// --- Issue type enum ---

// IssueType is the closed set of defects the rules can detect.
type IssueType string

const (
	// Character rules.
	IssueCharacterUnlisted     IssueType = "character-unlisted"
	IssueCharacterArcUndefined IssueType = "character-arc-undefined"

	// Plot rules.
	IssuePlotThreadUnused     IssueType = "plot-thread-unused"
	IssuePlotThreadUnresolved IssueType = "plot-thread-unresolved"

	// Timeline rules.
	IssueChapterSequenceGap     IssueType = "chapter-sequence-gap"
	IssueDuplicateChapterNumber IssueType = "duplicate-chapter-number"

	// Style rules.
	IssuePOVUndefined IssueType = "pov-undefined"
)

// --- Fix mode enum ---

// FixMode controls which severities auto-fix may touch.
type FixMode string

const (
	// FixConservative fixes minor issues only.
	FixConservative FixMode = "conservative"
	// FixAggressive additionally fixes moderate issues.
	FixAggressive FixMode = "aggressive"
)

// ValidateFixMode returns an error if the fix mode is not recognized.
func ValidateFixMode(m FixMode) error {
	if m != FixConservative && m != FixAggressive {
		return fmt.Errorf("invalid fix mode %q: must be conservative or aggressive", m)
	}
	return nil
}

// fixableSeverity reports whether a severity is eligible for auto-fix
// under the given mode.
func fixableSeverity(s Severity, mode FixMode) bool {
	switch mode {
	case FixAggressive:
		return s == SeverityMinor || s == SeverityModerate
	default:
		return s == SeverityMinor
	}
}

// --- Issue ---

// Issue is one detected consistency defect. The entity ID fields are
// populated according to the issue type; zero means not applicable.
type Issue struct {
	Type        IssueType `json:"type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`

	ChapterID     int `json:"chapterId,omitempty"`
	ChapterNumber int `json:"chapterNumber,omitempty"`
	SceneID       int `json:"sceneId,omitempty"`
	CharacterID   int `json:"characterId,omitempty"`
	ThreadID      int `json:"threadId,omitempty"`
	Count         int `json:"count,omitempty"`

	// Set on issues that auto-fix actually resolved.
	FixedAt string  `json:"fixedAt,omitempty"`
	FixMode FixMode `json:"fixMode,omitempty"`
}
