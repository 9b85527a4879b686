package bible

import "strings"

// Slugify converts a character name into the filename slug used for its
// Markdown document: lowercase, every non-alphanumeric rune replaced by
// a hyphen. Example: "Mara Voss-Herrick" → "mara-voss-herrick".
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return "unnamed"
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
