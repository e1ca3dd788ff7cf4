package search

import (
	"regexp"
	"strings"
	"time"

	"github.com/Linattendu/projet-moteur-recherche/model"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// phraseMatcher finds a query phrase in a raw body, case-insensitively.
// Whitespace inside the phrase matches any whitespace run, so
// "water resources" also finds "water\nresources" or "water   resources".
// The same matcher drives the containment filter and snippet extraction
// so both agree on what counts as an occurrence.
type phraseMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func newPhraseMatcher(phrase string) phraseMatcher {
	words := strings.Fields(phrase)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	pattern := strings.Join(quoted, `\s+`)
	return phraseMatcher{
		pattern: pattern,
		re:      regexp.MustCompile(`(?i)` + pattern),
	}
}

func (m phraseMatcher) contains(body string) bool {
	if m.pattern == "" {
		return false
	}
	return m.re.MatchString(body)
}

// filter holds the per-query predicates applied after scoring.
type filter struct {
	phrase phraseMatcher
	author string
	from   *time.Time
	to     *time.Time
}

func newFilter(phrase string, query services.SearchQuery) filter {
	return filter{
		phrase: newPhraseMatcher(phrase),
		author: query.Author,
		from:   query.DateFrom,
		to:     query.DateTo,
	}
}

// keep reports whether doc survives every filter.
func (f filter) keep(doc model.Document, score float64) bool {
	if score <= 0 {
		return false
	}
	if f.author != "" && doc.Author != f.author {
		return false
	}
	if f.from != nil && doc.PublishedAt.Before(*f.from) {
		return false
	}
	if f.to != nil && doc.PublishedAt.After(*f.to) {
		return false
	}
	return f.phrase.contains(doc.Body)
}
