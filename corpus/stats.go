package corpus

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Linattendu/projet-moteur-recherche/internal/tokenizer"
)

// WordCount is the number of occurrences of a normalized word.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordStats returns the n most frequent normalized words across all bodies.
// Ties keep first-appearance order. n <= 0 returns every word.
func (c *Corpus) WordStats(n int) []WordCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, doc := range c.Documents() {
		for _, token := range tokenizer.Tokenize(doc.Body) {
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	out := make([]WordCount, len(order))
	for i, word := range order {
		out[i] = WordCount{Word: word, Count: counts[word]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// ConcordanceLine is one keyword-in-context occurrence.
type ConcordanceLine struct {
	Left  string `json:"left"`
	Match string `json:"match"`
	Right string `json:"right"`
}

// Concordance finds every case-insensitive occurrence of keyword in the
// normalized text of the corpus, with up to contextChars bytes on each side.
func (c *Corpus) Concordance(keyword string, contextChars int) []ConcordanceLine {
	keyword = tokenizer.Normalize(keyword)
	if keyword == "" {
		return []ConcordanceLine{}
	}
	if contextChars < 0 {
		contextChars = 0
	}

	docs := c.Documents()
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = tokenizer.Normalize(doc.Body)
	}
	text := strings.Join(parts, " ")

	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(keyword))
	lines := make([]ConcordanceLine, 0)
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		start := runeFloor(text, loc[0]-contextChars)
		end := runeCeil(text, loc[1]+contextChars)
		lines = append(lines, ConcordanceLine{
			Left:  text[start:loc[0]],
			Match: text[loc[0]:loc[1]],
			Right: text[loc[1]:end],
		})
	}
	return lines
}

// runeFloor clamps i into text and moves it back to a rune boundary.
func runeFloor(text string, i int) int {
	if i <= 0 {
		return 0
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// runeCeil clamps i into text and moves it forward to a rune boundary.
func runeCeil(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}
