package cluster

import (
	"regexp"
	"strings"
)

// nonWord matches anything outside [A-Za-z0-9_], same as the \W class.
var nonWord = regexp.MustCompile(`\W`)

// Normalize lowercases text, replaces non-word characters with spaces,
// collapses whitespace runs and trims.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	spaced := nonWord.ReplaceAllString(lowered, " ")
	return strings.Join(strings.Fields(spaced), " ")
}

// Tokenize splits normalized text on whitespace.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}
