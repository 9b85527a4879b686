package consistency

import (
	"github.com/storyforge/chapter-master/internal/bible"
)

// autoFix applies the implemented fixes to every eligible issue and
// persists the result. Eligibility is severity-gated by the fix mode;
// of the issue types only character-unlisted has a safe mechanical fix
// today, so an eligible issue of any other type is left untouched.
// The bible is only written back when at least one fix landed.
func (c *Checker) autoFix(projectRoot string, issues []Issue, mode FixMode) ([]Issue, error) {
	var fixed []Issue
	_, err := c.store.Transact(projectRoot, func(b *bible.StoryBible) error {
		for i := range issues {
			issue := &issues[i]
			if !fixableSeverity(issue.Severity, mode) {
				continue
			}
			if !applyFix(b, issue) {
				continue
			}
			issue.FixedAt = bible.Now()
			issue.FixMode = mode
			fixed = append(fixed, *issue)
		}
		if len(fixed) == 0 {
			return bible.ErrNoChanges
		}
		return nil
	})
	if err == bible.ErrNoChanges {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fixed, nil
}

// applyFix mutates the bible to resolve one issue, reporting whether it
// actually changed anything.
func applyFix(b *bible.StoryBible, issue *Issue) bool {
	switch issue.Type {
	case IssueCharacterUnlisted:
		chapter := b.ChapterByID(issue.ChapterID)
		if chapter == nil || chapter.ListsCharacter(issue.CharacterID) {
			return false
		}
		chapter.Characters = append(chapter.Characters, issue.CharacterID)
		chapter.Touch()
		return true
	}
	return false
}
