// Package config provides configuration structures for the search engine.
// It defines per-corpus index settings and the process configuration file.
package config

import (
	"fmt"
	"strings"
)

// Scoring policies for ranking search hits.
const (
	ScoringDot    = "dot"    // Raw dot product of the TF-IDF row and the query vector
	ScoringCosine = "cosine" // Dot product divided by both norms, 0 when either norm is 0
)

// Defaults applied by ApplyDefaults.
const (
	DefaultSnippetWindow = 10
	DefaultLimit         = 20
	DefaultBuildWorkers  = 4
)

// IndexSettings controls how a corpus is indexed and searched.
type IndexSettings struct {
	SnippetWindow int    `json:"snippet_window" toml:"snippet_window"` // Words kept on each side of a match in snippets
	DefaultLimit  int    `json:"default_limit" toml:"default_limit"`   // Hits returned when a query does not set a limit
	Scoring       string `json:"scoring" toml:"scoring"`               // "dot" or "cosine"
	Stemming      bool   `json:"stemming" toml:"stemming"`             // Snowball stemming of document and query terms
	BuildWorkers  int    `json:"build_workers" toml:"build_workers"`   // Goroutines tokenizing documents during a build
}

// DefaultIndexSettings returns the settings used when none are configured.
func DefaultIndexSettings() IndexSettings {
	s := IndexSettings{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills every unset field.
func (s *IndexSettings) ApplyDefaults() {
	if s.SnippetWindow <= 0 {
		s.SnippetWindow = DefaultSnippetWindow
	}
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = DefaultLimit
	}
	if strings.TrimSpace(s.Scoring) == "" {
		s.Scoring = ScoringDot
	}
	s.Scoring = strings.ToLower(strings.TrimSpace(s.Scoring))
	if s.BuildWorkers <= 0 {
		s.BuildWorkers = DefaultBuildWorkers
	}
}

// Validate returns one message per invalid field.
func (s *IndexSettings) Validate() []string {
	var problems []string

	if s.SnippetWindow < 0 {
		problems = append(problems, fmt.Sprintf("snippet_window must not be negative, got %d", s.SnippetWindow))
	}
	if s.DefaultLimit < 0 {
		problems = append(problems, fmt.Sprintf("default_limit must not be negative, got %d", s.DefaultLimit))
	}
	if s.BuildWorkers < 0 {
		problems = append(problems, fmt.Sprintf("build_workers must not be negative, got %d", s.BuildWorkers))
	}
	switch strings.ToLower(strings.TrimSpace(s.Scoring)) {
	case "", ScoringDot, ScoringCosine:
	default:
		problems = append(problems, "scoring must be '"+ScoringDot+"' or '"+ScoringCosine+"', got '"+s.Scoring+"'")
	}

	return problems
}
