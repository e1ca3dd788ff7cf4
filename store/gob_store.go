package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/internal/persistence"
)

const dataDirPerm = 0755

// GobFileStore keeps each snapshot in its own directory under a data
// directory, one gob file per part.
type GobFileStore struct {
	dataDir string
	logger  *slog.Logger
}

var _ SnapshotStore = (*GobFileStore)(nil)

// NewGobFileStore creates the data directory if needed.
func NewGobFileStore(dataDir string, logger *slog.Logger) (*GobFileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &GobFileStore{dataDir: dataDir, logger: logger}, nil
}

// gobMeta is stored next to the blobs.
type gobMeta struct {
	CreatedAt time.Time
}

func (s *GobFileStore) partPath(name, part string) string {
	return filepath.Join(s.dataDir, name, part+".gob")
}

// Save writes every part of snap into a staging directory and swaps it
// in place of the stored one, so a failed save leaves the previous
// snapshot untouched.
func (s *GobFileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := checkSave(snap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Staging names start with '.' and never pass ValidName, so List skips them.
	staging, err := os.MkdirTemp(s.dataDir, ".staging-"+snap.Name+"-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory for corpus %s: %w", snap.Name, err)
	}
	defer os.RemoveAll(staging)

	parts := []struct {
		name string
		blob []byte
	}{
		{PartCorpus, snap.Corpus},
		{PartVocabulary, snap.Vocabulary},
		{PartTF, snap.TF},
		{PartTFIDF, snap.TFIDF},
		{PartSettings, snap.Settings},
	}
	for _, part := range parts {
		if len(part.blob) == 0 {
			continue
		}
		if err := persistence.SaveGob(filepath.Join(staging, part.name+".gob"), part.blob); err != nil {
			return fmt.Errorf("failed to save %s for corpus %s: %w", part.name, snap.Name, err)
		}
	}
	if err := persistence.SaveGob(filepath.Join(staging, "meta.gob"), gobMeta{CreatedAt: snap.CreatedAt}); err != nil {
		return fmt.Errorf("failed to save metadata for corpus %s: %w", snap.Name, err)
	}

	if err := s.replaceDir(snap.Name, staging); err != nil {
		return err
	}
	s.logger.Debug("snapshot saved", "corpus", snap.Name, "dir", filepath.Join(s.dataDir, snap.Name))
	return nil
}

// replaceDir moves staging to the snapshot directory of name. The previous
// directory is retired first and restored if the move fails.
func (s *GobFileStore) replaceDir(name, staging string) error {
	live := filepath.Join(s.dataDir, name)
	retired := ""
	if _, err := os.Stat(live); err == nil {
		retired = staging + ".old"
		if err := os.Rename(live, retired); err != nil {
			return fmt.Errorf("failed to retire snapshot directory %s: %w", live, err)
		}
	}
	if err := os.Rename(staging, live); err != nil {
		if retired != "" {
			if restoreErr := os.Rename(retired, live); restoreErr != nil {
				s.logger.Error("failed to restore previous snapshot", "corpus", name, "error", restoreErr)
			}
		}
		return fmt.Errorf("failed to move snapshot into %s: %w", live, err)
	}
	if retired != "" {
		if err := os.RemoveAll(retired); err != nil {
			s.logger.Warn("failed to remove retired snapshot", "dir", retired, "error", err)
		}
	}
	return nil
}

// Load reads every part stored for name.
func (s *GobFileStore) Load(ctx context.Context, name string) (Snapshot, error) {
	if err := checkName(name); err != nil {
		return Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if _, err := os.Stat(filepath.Join(s.dataDir, name)); os.IsNotExist(err) {
		return Snapshot{}, apperrors.NewSnapshotNotFoundError(name)
	}

	snap := Snapshot{Name: name}
	targets := []struct {
		part string
		dst  *[]byte
	}{
		{PartCorpus, &snap.Corpus},
		{PartVocabulary, &snap.Vocabulary},
		{PartTF, &snap.TF},
		{PartTFIDF, &snap.TFIDF},
		{PartSettings, &snap.Settings},
	}
	for _, target := range targets {
		err := persistence.LoadGob(s.partPath(name, target.part), target.dst)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, fmt.Errorf("failed to load %s for corpus %s: %w", target.part, name, err)
		}
	}

	var meta gobMeta
	if err := persistence.LoadGob(s.partPath(name, "meta"), &meta); err == nil {
		snap.CreatedAt = meta.CreatedAt
	}

	if err := snap.Complete(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// List returns the names of every snapshot directory.
func (s *GobFileStore) List(ctx context.Context) ([]string, error) {
	items, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", s.dataDir, err)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsDir() && ValidName(item.Name()) {
			names = append(names, item.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the snapshot directory of name.
func (s *GobFileStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	dir := filepath.Join(s.dataDir, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return apperrors.NewSnapshotNotFoundError(name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete snapshot directory %s: %w", dir, err)
	}
	return nil
}

// Close is a no-op.
func (s *GobFileStore) Close() error {
	return nil
}
