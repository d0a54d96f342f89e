// Package queryfilter validates user queries and extracts search keywords.
package queryfilter

import "strings"

// MaxQueryLen is the post-trim length cap in runes. Longer inputs are
// truncated, not rejected.
const MaxQueryLen = 500

// Sanitize trims whitespace and truncates to MaxQueryLen runes. Idempotent.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > MaxQueryLen {
		text = strings.TrimSpace(string(runes[:MaxQueryLen]))
	}
	return text
}
