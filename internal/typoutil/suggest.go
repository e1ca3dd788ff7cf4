package typoutil

import (
	"log/slog"
	"sort"
	"sync"
	"unicode/utf8"
)

const (
	// MinLengthForOneTypo is the shortest term allowed one edit.
	MinLengthForOneTypo = 4
	// MinLengthForTwoTypos is the shortest term allowed two edits.
	MinLengthForTwoTypos = 8

	defaultCacheSize = 1000
)

// MaxDistance returns how many edits a suggestion for term may be away.
func MaxDistance(term string) int {
	n := utf8.RuneCountInString(term)
	switch {
	case n >= MinLengthForTwoTypos:
		return 2
	case n >= MinLengthForOneTypo:
		return 1
	default:
		return 0
	}
}

// Candidate is a term that may be suggested, weighted by how many documents
// contain it.
type Candidate struct {
	Term   string
	Weight int
}

// Suggester finds the closest candidates to a term.
// It is safe for concurrent use. The candidate list is fixed at creation.
type Suggester struct {
	candidates []Candidate

	mu        sync.RWMutex
	cache     map[string][]string
	cacheSize int
	logger    *slog.Logger
}

// NewSuggester creates a Suggester over candidates.
func NewSuggester(candidates []Candidate, logger *slog.Logger) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}
	c := make([]Candidate, len(candidates))
	copy(c, candidates)
	return &Suggester{
		candidates: c,
		cache:      make(map[string][]string),
		cacheSize:  defaultCacheSize,
		logger:     logger,
	}
}

type match struct {
	Candidate
	distance int
}

// Suggest returns at most n candidates within MaxDistance(term) edits of
// term, closest first. Ties go to the heavier candidate, then to the
// alphabetically first one. term itself is never suggested.
func (s *Suggester) Suggest(term string, n int) []string {
	limit := MaxDistance(term)
	if n <= 0 || limit == 0 || len(s.candidates) == 0 {
		return nil
	}

	s.mu.RLock()
	cached, ok := s.cache[term]
	s.mu.RUnlock()
	if ok {
		return truncate(cached, n)
	}

	matches := make([]match, 0)
	for _, c := range s.candidates {
		if c.Term == term {
			continue
		}
		if d := Distance(term, c.Term, limit); d <= limit {
			matches = append(matches, match{Candidate: c, distance: d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		if matches[i].Weight != matches[j].Weight {
			return matches[i].Weight > matches[j].Weight
		}
		return matches[i].Term < matches[j].Term
	})

	terms := make([]string, len(matches))
	for i, m := range matches {
		terms[i] = m.Term
	}
	s.logger.Debug("suggestions computed", "term", term, "max_distance", limit, "found", len(terms))

	s.mu.Lock()
	if len(s.cache) < s.cacheSize {
		s.cache[term] = terms
	}
	s.mu.Unlock()

	return truncate(terms, n)
}

func truncate(terms []string, n int) []string {
	if len(terms) > n {
		terms = terms[:n]
	}
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}
