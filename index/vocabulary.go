package index

import (
	"bytes"
	"encoding/gob"
)

// TermStats is the vocabulary record of one term.
// The term's id is its position in the vocabulary.
type TermStats struct {
	Term        string `json:"term"`
	Occurrences int    `json:"occurrences"` // Total occurrences across the corpus
	DocFreq     int    `json:"doc_freq"`    // Number of documents containing the term
}

// Vocabulary maps normalized terms to dense, monotonically assigned ids.
type Vocabulary struct {
	ids   map[string]int
	terms []TermStats
}

// NewVocabulary returns an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		ids:   make(map[string]int),
		terms: make([]TermStats, 0),
	}
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// ID returns the id of term.
func (v *Vocabulary) ID(term string) (int, bool) {
	id, ok := v.ids[term]
	return id, ok
}

// Stats returns the record stored for id.
func (v *Vocabulary) Stats(id int) TermStats {
	return v.terms[id]
}

// Lookup returns the record stored for term.
func (v *Vocabulary) Lookup(term string) (TermStats, bool) {
	id, ok := v.ids[term]
	if !ok {
		return TermStats{}, false
	}
	return v.terms[id], true
}

// Terms returns a copy of every record, ordered by id.
func (v *Vocabulary) Terms() []TermStats {
	out := make([]TermStats, len(v.terms))
	copy(out, v.terms)
	return out
}

// intern returns the id of term, assigning the next id on first sight.
func (v *Vocabulary) intern(term string) int {
	if id, ok := v.ids[term]; ok {
		return id
	}
	id := len(v.terms)
	v.ids[term] = id
	v.terms = append(v.terms, TermStats{Term: term})
	return id
}

// gobVocabularyData is a helper struct for Gob encoding/decoding Vocabulary.
// The id map is derived from the term order and is not stored.
type gobVocabularyData struct {
	Terms []TermStats
}

// GobEncode implements the gob.GobEncoder interface for Vocabulary.
func (v *Vocabulary) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobVocabularyData{Terms: v.terms}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for Vocabulary.
func (v *Vocabulary) GobDecode(data []byte) error {
	decoded := gobVocabularyData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decoded); err != nil {
		return err
	}

	v.terms = decoded.Terms
	if v.terms == nil {
		v.terms = make([]TermStats, 0)
	}
	v.ids = make(map[string]int, len(v.terms))
	for id, stats := range v.terms {
		v.ids[stats.Term] = id
	}
	return nil
}
