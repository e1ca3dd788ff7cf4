// Package api provides the HTTP interface of the search engine.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/Linattendu/projet-moteur-recherche/services"
	"github.com/Linattendu/projet-moteur-recherche/store"
)

// dateLayout is accepted next to RFC 3339 for date filters.
const dateLayout = "2006-01-02"

// maxSearchLimit caps the number of hits one request may ask for.
const maxSearchLimit = 1000

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateCorpusName checks a corpus name taken from a path or a body.
func ValidateCorpusName(name string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if name == "" {
		result.AddError("name", "Corpus name is required")
		return result
	}
	if strings.TrimSpace(name) != name {
		result.AddError("name", "Corpus name cannot have leading or trailing whitespace")
		return result
	}
	if !store.ValidName(name) {
		result.AddError("name", "Corpus name must start with a letter or digit and contain only letters, digits, '.', '-' and '_'")
	}
	return result
}

// SearchRequest is the body of a search call.
type SearchRequest struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit"`
	Author   string `json:"author"`
	DateFrom string `json:"date_from"` // RFC 3339 or 2006-01-02
	DateTo   string `json:"date_to"`   // RFC 3339 or 2006-01-02, a bare date covers the whole day
}

// MultiSearchRequest is the body of a search across several corpora.
type MultiSearchRequest struct {
	Corpora []string `json:"corpora"`
	SearchRequest
}

// parseDate accepts RFC 3339 or a bare date. endOfDay moves a bare date to
// its last instant so it can serve as an inclusive upper bound.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("'%s' is neither RFC 3339 nor YYYY-MM-DD", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// ValidateSearchRequest checks req and converts it to a query.
func ValidateSearchRequest(req SearchRequest) (services.SearchQuery, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	query := services.SearchQuery{
		QueryString: req.Query,
		Limit:       req.Limit,
		Author:      strings.TrimSpace(req.Author),
	}

	if req.Limit < 0 {
		result.AddError("limit", "Limit must not be negative")
	} else if req.Limit > maxSearchLimit {
		result.AddError("limit", fmt.Sprintf("Limit must not exceed %d", maxSearchLimit))
	}

	var err error
	if query.DateFrom, err = parseDate(req.DateFrom, false); err != nil {
		result.AddError("date_from", err.Error())
	}
	if query.DateTo, err = parseDate(req.DateTo, true); err != nil {
		result.AddError("date_to", err.Error())
	}
	if query.DateFrom != nil && query.DateTo != nil && query.DateFrom.After(*query.DateTo) {
		result.AddError("date_from", "date_from must not be after date_to")
	}

	return query, result
}

// ValidateMultiSearchRequest checks req and converts it to a multi-corpus query.
func ValidateMultiSearchRequest(req MultiSearchRequest) (services.MultiSearchQuery, *ValidationResult) {
	query, result := ValidateSearchRequest(req.SearchRequest)
	if len(req.Corpora) == 0 {
		result.AddError("corpora", "At least one corpus is required")
	}
	for i, name := range req.Corpora {
		if r := ValidateCorpusName(name); r.HasErrors() {
			result.AddError(fmt.Sprintf("corpora[%d]", i), r.Errors[0].Message)
		}
	}
	return services.MultiSearchQuery{Corpora: req.Corpora, Query: query}, result
}
