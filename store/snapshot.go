// Package store persists corpus snapshots. A snapshot carries four opaque
// blobs (corpus, vocabulary, TF, TF-IDF) that are only meaningful together:
// stores refuse to save an incomplete set and report a stored one as
// ErrIncompleteSnapshot instead of returning the parts they have.
package store

import (
	"context"
	"regexp"
	"time"

	"github.com/Linattendu/projet-moteur-recherche/internal/errors"
)

// Snapshot part names, also used as file names and keys.
const (
	PartCorpus     = "corpus"
	PartVocabulary = "vocabulary"
	PartTF         = "tf"
	PartTFIDF      = "tfidf"
	PartSettings   = "settings"
)

// Snapshot is the persisted form of one corpus and its term index.
type Snapshot struct {
	Name       string
	Corpus     []byte
	Vocabulary []byte
	TF         []byte
	TFIDF      []byte
	Settings   []byte // Optional
	CreatedAt  time.Time
}

// Missing lists the required parts that are empty.
func (s Snapshot) Missing() []string {
	var missing []string
	if len(s.Corpus) == 0 {
		missing = append(missing, PartCorpus)
	}
	if len(s.Vocabulary) == 0 {
		missing = append(missing, PartVocabulary)
	}
	if len(s.TF) == 0 {
		missing = append(missing, PartTF)
	}
	if len(s.TFIDF) == 0 {
		missing = append(missing, PartTFIDF)
	}
	return missing
}

// Complete returns an IncompleteSnapshotError unless all four parts are set.
func (s Snapshot) Complete() error {
	if missing := s.Missing(); len(missing) > 0 {
		return errors.NewIncompleteSnapshotError(s.Name, missing)
	}
	return nil
}

// SnapshotStore saves and loads snapshots keyed by corpus name.
type SnapshotStore interface {
	// Save replaces the snapshot stored under snap.Name.
	Save(ctx context.Context, snap Snapshot) error
	// Load returns ErrSnapshotNotFound or ErrIncompleteSnapshot on failure.
	Load(ctx context.Context, name string) (Snapshot, error)
	// List returns stored names in ascending order.
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidName reports whether name can be used as a snapshot key.
func ValidName(name string) bool {
	return nameRegex.MatchString(name)
}

func checkName(name string) error {
	if !ValidName(name) {
		return errors.NewValidationError("name", "invalid corpus name '"+name+"'")
	}
	return nil
}

// checkSave validates a snapshot before it is written.
func checkSave(snap Snapshot) error {
	if err := checkName(snap.Name); err != nil {
		return err
	}
	return snap.Complete()
}
