package factory

import (
	"fmt"
	"strings"

	"github.com/storyforge/chapter-master/internal/bible"
)

// --- Prompt construction ---
//
// Prompts always restate the expected JSON shape inline. The generation
// client appends its own "JSON only" instruction; these prompts carry
// the field-level contract.

// premiseAnalysisPrompt asks for structured metadata about a raw premise.
func premiseAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze this novel premise and extract structured metadata.

Premise:
%s

Return a JSON object with exactly these fields:
{
  "title": "a working title for the novel",
  "genre": "one of: fantasy, science-fiction, mystery, thriller, romance, horror, historical-fiction, literary-fiction, young-adult",
  "targetAudience": "the most likely readership",
  "themes": ["2-5 central themes"],
  "summary": "the premise restated in one tight paragraph"
}`, text)
}

// characterProfilePrompt asks for an enriched character profile.
// Sections not requested by the caller are omitted from the contract so
// the model does not waste tokens on them.
func characterProfilePrompt(name string, charType bible.CharacterType, description, premise string, profile, arc, voice bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Develop the character %q (%s) for this novel.\n\n", name, charType)
	if premise != "" {
		fmt.Fprintf(&b, "Novel premise:\n%s\n\n", premise)
	}
	if description != "" {
		fmt.Fprintf(&b, "What is known about the character:\n%s\n\n", description)
	}

	b.WriteString("Return a JSON object with these fields:\n{\n")
	b.WriteString(`  "description": "one-paragraph character summary",` + "\n")
	if profile {
		b.WriteString(`  "biography": {"age": 0, "background": "", "occupation": ""},` + "\n")
		b.WriteString(`  "psychology": {"motivations": [], "fears": [], "goals": [], "flaws": [], "strengths": []},` + "\n")
		b.WriteString(`  "appearance": "",` + "\n")
		b.WriteString(`  "traits": [],` + "\n")
	}
	if arc {
		b.WriteString(`  "arc": {"startingState": "", "midpointState": "", "endingState": "", "keyMoments": []},` + "\n")
	}
	if voice {
		b.WriteString(`  "voice": {"speechPatterns": "", "vocabulary": "", "tone": "", "distinctiveFeatures": []},` + "\n")
	}
	b.WriteString("}")
	return b.String()
}

// chapterPrompt asks for chapter planning material plus scene breakdown.
func chapterPrompt(ch *bible.Chapter, premise string, characterNames []string, sceneCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan chapter %d (%q) of this novel.\n\n", ch.ChapterNumber, ch.Title)
	if premise != "" {
		fmt.Fprintf(&b, "Novel premise:\n%s\n\n", premise)
	}
	if ch.Purpose != "" {
		fmt.Fprintf(&b, "Stated purpose: %s\n", ch.Purpose)
	}
	if len(characterNames) > 0 {
		fmt.Fprintf(&b, "Characters present: %s\n", strings.Join(characterNames, ", "))
	}
	if len(ch.Conflicts) > 0 {
		fmt.Fprintf(&b, "Known conflicts: %s\n", strings.Join(ch.Conflicts, "; "))
	}

	fmt.Fprintf(&b, `
Return a JSON object with these fields:
{
  "purpose": "what this chapter accomplishes",
  "conflicts": ["the tensions driving it"],
  "plotAdvancement": "how the plot moves forward",
  "scenes": [%d scene objects: {"title": "", "sceneType": "one of: action, dialogue, exposition, climax, transition, flashback", "setting": "", "purpose": ""}]
}`, sceneCount)
	return b.String()
}
