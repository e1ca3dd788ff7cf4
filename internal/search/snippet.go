package search

import (
	"fmt"
	"regexp"
	"strings"
)

// SnippetUnavailable is returned in place of a snippet when the phrase
// cannot be located in the body.
const SnippetUnavailable = "no snippet available"

// snippet returns the first occurrence of the phrase with up to window
// whole words on each side.
func (m phraseMatcher) snippet(body string, window int) string {
	if m.pattern == "" {
		return SnippetUnavailable
	}
	if window < 0 {
		window = 0
	}
	re, err := regexp.Compile(fmt.Sprintf(`(?i)(?:\S+\s+){0,%d}%s(?:\s+\S+){0,%d}`, window, m.pattern, window))
	if err != nil {
		return SnippetUnavailable
	}
	match := strings.TrimSpace(re.FindString(body))
	if match == "" {
		return SnippetUnavailable
	}
	return match
}

// Snippet extracts context around the first case-insensitive occurrence of
// phrase in body, or SnippetUnavailable.
func Snippet(body, phrase string, window int) string {
	return newPhraseMatcher(strings.TrimSpace(phrase)).snippet(body, window)
}
