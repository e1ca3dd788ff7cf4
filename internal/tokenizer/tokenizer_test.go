package tokenizer

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"lowercase", "Hello World", "hello world"},
		{"diacritics", "Café Économie naïve", "cafe economie naive"},
		{"ascii contraction", "Don't stop", "dont stop"},
		{"typographic contraction", "l’eau", "leau"},
		{"punctuation removed", "hello, world! (really?)", "hello world really"},
		{"symbols removed", "a+b=c $5", "abc 5"},
		{"whitespace collapsed", "  water \t\n water   resources ", "water water resources"},
		{"hyphen joins", "state-of-the-art", "stateoftheart"},
		{"lone apostrophe", "students' books", "students books"},
		{"digits kept", "covid19 in 2020", "covid19 in 2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"only symbols", "!@#$%^", []string{}},
		{"simple", "Water water resources.", []string{"water", "water", "resources"}},
		{"contraction stays one token", "It's fine", []string{"its", "fine"}},
		{"accented", "Élan vital", []string{"elan", "vital"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAnalyzerTokens(t *testing.T) {
	plain := Analyzer{}
	if got := plain.Tokens("Running runners"); !reflect.DeepEqual(got, []string{"running", "runners"}) {
		t.Errorf("plain analyzer = %v", got)
	}

	stemming := Analyzer{Stem: true}
	got := stemming.Tokens("Running runs")
	want := []string{"run", "run"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stemming analyzer = %v, want %v", got, want)
	}

	if got := stemming.Tokens(""); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}
