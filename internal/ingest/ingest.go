// Package ingest turns external files into documents ready for a corpus.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

// SpeechDateLayout is the date format of the speech CSV "date" column.
const SpeechDateLayout = "January 2, 2006"

// DefaultMinWords is the sentence length a speech sentence must exceed to be kept.
const DefaultMinWords = 20

var speechColumns = []string{"speaker", "text", "date", "descr", "link"}

// sentencePattern matches a run of non-period text, optionally followed by
// a period and one whitespace character.
var sentencePattern = regexp.MustCompile(`[^.]+(?:\.\s)?`)

// SpeechOptions controls ReadSpeechCSV.
type SpeechOptions struct {
	MinWords int // Sentences with at most this many words are dropped; 0 uses DefaultMinWords
	Logger   *slog.Logger
}

// SplitSentences cuts text into sentences at periods followed by whitespace.
func SplitSentences(text string) []string {
	return sentencePattern.FindAllString(text, -1)
}

// ReadSpeechCSV reads a tab-separated file of speeches with the columns
// speaker, text, date, descr and link. Every sentence longer than
// MinWords words becomes a csv document; its source URL is the speech
// link with the sentence ordinal as fragment so that each one is unique.
func ReadSpeechCSV(r io.Reader, opts SpeechOptions) ([]model.Document, error) {
	if opts.MinWords <= 0 {
		opts.MinWords = DefaultMinWords
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []model.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range speechColumns {
		if _, ok := columns[name]; !ok {
			return nil, errors.NewValidationError("header", fmt.Sprintf("missing column '%s'", name))
		}
	}

	docs := make([]model.Document, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		field := func(name string) string {
			if i := columns[name]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		published, err := time.Parse(SpeechDateLayout, field("date"))
		if err != nil {
			logger.Warn("skipping speech with unparsable date", "line", line, "date", field("date"))
			continue
		}
		link := field("link")
		if link == "" {
			logger.Warn("skipping speech without link", "line", line)
			continue
		}

		for n, sentence := range SplitSentences(field("text")) {
			sentence = strings.TrimSpace(sentence)
			if len(strings.Fields(sentence)) <= opts.MinWords {
				continue
			}
			docs = append(docs, model.Document{
				Title:       field("descr"),
				Author:      field("speaker"),
				PublishedAt: published,
				SourceURL:   fmt.Sprintf("%s#s%d", link, n),
				Body:        sentence,
				Origin:      model.OriginCSV,
			})
		}
	}
	logger.Info("speech csv read", "lines", line-1, "documents", len(docs))
	return docs, nil
}

// ReadJSON reads a JSON array of documents, or a single document object.
func ReadJSON(r io.Reader) ([]model.Document, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		var doc model.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}
		return []model.Document{doc}, nil
	}

	var docs []model.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}
