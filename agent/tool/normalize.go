package tool

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeID canonicalizes a user-facing entity identifier: surrounding
// whitespace trimmed, internal whitespace removed, lower-cased. Speech
// transcription produces variants like "O 302" for "o302"; store lookups are
// case-sensitive, so every domain tool must normalize before touching the
// store. Idempotent.
func NormalizeID(raw string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), ""))
}
