package retrieval

import (
	"regexp"
	"strings"
)

// tokenPattern extracts alphanumeric and Hangul runs.
var tokenPattern = regexp.MustCompile(`[0-9A-Za-z가-힣]+`)

// Tokenize lower-cases the text and returns the term-frequency multiset.
func Tokenize(text string) map[string]int {
	tokens := make(map[string]int)
	for _, t := range tokenPattern.FindAllString(text, -1) {
		tokens[strings.ToLower(t)]++
	}
	return tokens
}
