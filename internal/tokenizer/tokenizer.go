// Package tokenizer holds the text normalization shared by indexing and
// querying. Both sides must go through the same Analyzer or vocabulary ids
// will not line up.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// contractionRegex matches an apostrophe between two word characters, as in "don't" or "l’eau".
var contractionRegex = regexp.MustCompile(`([\p{L}\p{N}])['’]([\p{L}\p{N}])`)

// Normalize lowercases text, strips diacritics, joins contractions,
// drops punctuation and symbols, and collapses whitespace.
func Normalize(text string) string {
	// 1. Lowercase
	lowered := strings.ToLower(text)

	// 2. Strip diacritics: decompose, drop combining marks, recompose
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, lowered)
	if err != nil {
		stripped = lowered
	}

	// 3. Join contractions before the apostrophe is removed as punctuation.
	// Applied twice so overlapping matches like "y'all'd" collapse fully.
	joined := contractionRegex.ReplaceAllString(stripped, "${1}${2}")
	joined = contractionRegex.ReplaceAllString(joined, "${1}${2}")

	// 4. Remove punctuation and symbols
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, joined)

	// 5. Collapse whitespace
	return strings.Join(strings.Fields(cleaned), " ")
}

// Tokenize normalizes text and splits it on whitespace.
func Tokenize(text string) []string {
	tokens := strings.Fields(Normalize(text))
	if tokens == nil {
		return make([]string, 0) // Empty slice, not nil
	}
	return tokens
}

// Analyzer turns raw text into index terms.
// The zero value applies Normalize and Tokenize only.
type Analyzer struct {
	Stem     bool   // Apply snowball stemming to every token
	Language string // Snowball language, "english" when empty
}

// Tokens returns the index terms of text.
func (a Analyzer) Tokens(text string) []string {
	tokens := Tokenize(text)
	if !a.Stem {
		return tokens
	}
	language := a.Language
	if language == "" {
		language = "english"
	}
	for i, token := range tokens {
		stemmed, err := snowball.Stem(token, language, true)
		if err == nil && stemmed != "" {
			tokens[i] = stemmed
		}
	}
	return tokens
}
