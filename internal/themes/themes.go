// Package themes tags indexed documents with topical themes by summing the
// TF-IDF weight of a fixed keyword list per theme.
package themes

import (
	"sort"

	"github.com/Linattendu/projet-moteur-recherche/index"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

// Keywords lists the words that signal each theme.
var Keywords = map[string][]string{
	"science":       {"research", "experiment", "innovation", "climate", "discovery", "laboratory", "physics"},
	"health":        {"hospital", "medicare", "vaccine", "healthcare", "doctor", "nurse", "therapy"},
	"technology":    {"AI", "data", "digital", "robotics", "cybersecurity", "software", "hardware"},
	"climatechange": {"carbon", "renewable", "environment", "sustainability", "warming", "greenhouse", "pollution"},
	"education":     {"school", "university", "student", "teacher", "curriculum", "learning", "lecture"},
}

// Names returns the theme names in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(Keywords))
	for name := range Keywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// keywordColumns resolves every keyword to vocabulary columns through the
// index analyzer, so stemming and case folding match the indexed terms.
// Keywords absent from the vocabulary are dropped.
func keywordColumns(ti *index.TermIndex) map[string][]int {
	cols := make(map[string][]int, len(Keywords))
	for theme, words := range Keywords {
		seen := make(map[int]bool)
		for _, word := range words {
			for _, token := range ti.Tokens(word) {
				id, ok := ti.Vocabulary().ID(token)
				if !ok || seen[id] {
					continue
				}
				seen[id] = true
				cols[theme] = append(cols[theme], id)
			}
		}
	}
	return cols
}

// Classify scores every document of ti against every theme.
// Only themes scoring above zero are listed, strongest first.
// Documents keep corpus order; documents with no theme are included with
// an empty theme list.
func Classify(ti *index.TermIndex) []services.DocumentThemes {
	cols := keywordColumns(ti)
	names := Names()
	tfidf := ti.TFIDF()
	docs := ti.Documents()

	out := make([]services.DocumentThemes, 0, len(docs))
	for row, doc := range docs {
		scores := make([]services.ThemeScore, 0)
		for _, theme := range names {
			var score float64
			for _, col := range cols[theme] {
				score += tfidf.At(row, col)
			}
			if score > 0 {
				scores = append(scores, services.ThemeScore{Theme: theme, Score: score})
			}
		}
		sort.SliceStable(scores, func(i, j int) bool {
			return scores[i].Score > scores[j].Score
		})
		out = append(out, services.DocumentThemes{
			URL:    doc.SourceURL,
			Title:  doc.Title,
			Themes: scores,
		})
	}
	return out
}

// Member is one document placed in a theme group.
type Member struct {
	URL   string  `json:"url"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SubCorpora groups classified documents by theme. Each group is sorted by
// the theme score descending, ties in corpus order.
func SubCorpora(classified []services.DocumentThemes) map[string][]Member {
	groups := make(map[string][]Member)
	for _, dt := range classified {
		for _, ts := range dt.Themes {
			groups[ts.Theme] = append(groups[ts.Theme], Member{URL: dt.URL, Title: dt.Title, Score: ts.Score})
		}
	}
	for theme := range groups {
		members := groups[theme]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Score > members[j].Score
		})
	}
	return groups
}
