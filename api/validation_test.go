package api

import (
	"strings"
	"testing"
	"time"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message")

	if result.Valid {
		t.Error("Expected Valid to be false after adding error")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(result.Errors))
	}
	if result.Errors[0].Field != "field1" {
		t.Errorf("Expected field 'field1', got '%s'", result.Errors[0].Field)
	}
	if result.Errors[0].Message != "error message" {
		t.Errorf("Expected message 'error message', got '%s'", result.Errors[0].Message)
	}
}

func TestValidationResult_HasErrors(t *testing.T) {
	result := &ValidationResult{Valid: true}

	if result.HasErrors() {
		t.Error("Expected HasErrors to be false for empty result")
	}

	result.AddError("field", "message")

	if !result.HasErrors() {
		t.Error("Expected HasErrors to be true after adding error")
	}
}

func TestValidateCorpusName(t *testing.T) {
	tests := []struct {
		name       string
		corpusName string
		wantValid  bool
		wantError  string
	}{
		{name: "valid name", corpusName: "speeches-2016", wantValid: true},
		{name: "dots and underscores", corpusName: "arxiv_v1.2", wantValid: true},
		{name: "empty name", corpusName: "", wantError: "Corpus name is required"},
		{name: "leading whitespace", corpusName: " news", wantError: "Corpus name cannot have leading or trailing whitespace"},
		{name: "trailing whitespace", corpusName: "news ", wantError: "Corpus name cannot have leading or trailing whitespace"},
		{name: "path separator", corpusName: "../etc", wantError: "Corpus name must start with a letter or digit"},
		{name: "inner space", corpusName: "my news", wantError: "Corpus name must start with a letter or digit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCorpusName(tt.corpusName)

			if result.HasErrors() == tt.wantValid {
				t.Fatalf("Expected valid=%v, got errors %v", tt.wantValid, result.Errors)
			}
			if tt.wantError != "" && !strings.HasPrefix(result.Errors[0].Message, tt.wantError) {
				t.Errorf("Expected error starting with '%s', got '%s'", tt.wantError, result.Errors[0].Message)
			}
		})
	}
}

func TestValidateSearchRequest(t *testing.T) {
	tests := []struct {
		name       string
		request    SearchRequest
		wantFields []string
	}{
		{name: "query only", request: SearchRequest{Query: "water"}},
		{name: "all filters", request: SearchRequest{Query: "water", Limit: 5, Author: "ana", DateFrom: "2022-01-01", DateTo: "2022-12-31T10:00:00Z"}},
		{name: "negative limit", request: SearchRequest{Limit: -3}, wantFields: []string{"limit"}},
		{name: "limit above cap", request: SearchRequest{Limit: maxSearchLimit + 1}, wantFields: []string{"limit"}},
		{name: "bad dates", request: SearchRequest{DateFrom: "01/02/2022", DateTo: "soon"}, wantFields: []string{"date_from", "date_to"}},
		{name: "inverted range", request: SearchRequest{DateFrom: "2022-05-01", DateTo: "2022-04-30"}, wantFields: []string{"date_from"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, result := ValidateSearchRequest(tt.request)

			if len(result.Errors) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %v", len(tt.wantFields), result.Errors)
			}
			for i, field := range tt.wantFields {
				if result.Errors[i].Field != field {
					t.Errorf("Error %d: expected field '%s', got '%s'", i, field, result.Errors[i].Field)
				}
			}
		})
	}
}

func TestValidateSearchRequest_Dates(t *testing.T) {
	query, result := ValidateSearchRequest(SearchRequest{
		Query:    "water",
		Author:   "  ana ",
		DateFrom: "2022-02-10",
		DateTo:   "2022-02-10",
	})
	if result.HasErrors() {
		t.Fatalf("Unexpected errors: %v", result.Errors)
	}

	if query.Author != "ana" {
		t.Errorf("Expected trimmed author 'ana', got '%s'", query.Author)
	}
	wantFrom := time.Date(2022, 2, 10, 0, 0, 0, 0, time.UTC)
	if !query.DateFrom.Equal(wantFrom) {
		t.Errorf("Expected date_from %v, got %v", wantFrom, query.DateFrom)
	}
	// a bare upper bound covers the whole day
	lastInstant := time.Date(2022, 2, 10, 23, 59, 59, 999999999, time.UTC)
	if !query.DateTo.Equal(lastInstant) {
		t.Errorf("Expected date_to %v, got %v", lastInstant, query.DateTo)
	}

	query, _ = ValidateSearchRequest(SearchRequest{DateTo: "2022-02-10T12:00:00+02:00"})
	if want := time.Date(2022, 2, 10, 10, 0, 0, 0, time.UTC); !query.DateTo.Equal(want) {
		t.Errorf("Expected RFC 3339 date_to %v, got %v", want, query.DateTo)
	}
	if query.DateFrom != nil {
		t.Errorf("Expected nil date_from, got %v", query.DateFrom)
	}
}

func TestValidateMultiSearchRequest(t *testing.T) {
	query, result := ValidateMultiSearchRequest(MultiSearchRequest{
		Corpora:       []string{"news", "bad name"},
		SearchRequest: SearchRequest{Query: "water", Limit: 2},
	})

	if len(result.Errors) != 1 || result.Errors[0].Field != "corpora[1]" {
		t.Fatalf("Expected one error on corpora[1], got %v", result.Errors)
	}
	if query.Query.QueryString != "water" || query.Query.Limit != 2 {
		t.Errorf("Query not carried over: %+v", query.Query)
	}

	_, result = ValidateMultiSearchRequest(MultiSearchRequest{SearchRequest: SearchRequest{Query: "water"}})
	if len(result.Errors) != 1 || result.Errors[0].Field != "corpora" {
		t.Errorf("Expected a corpora error, got %v", result.Errors)
	}
}
