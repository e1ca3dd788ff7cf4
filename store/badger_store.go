package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
)

const (
	badgerPrefix  = "snapshot/"
	partCreatedAt = "created_at"
)

// BadgerStore keeps each snapshot part under its own key,
// snapshot/<name>/<part>, and writes all parts in one transaction.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ SnapshotStore = (*BadgerStore)(nil)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

// OpenBadgerStore opens a BadgerDB database in dir.
// With inMemory set, dir is ignored and nothing touches the disk.
func OpenBadgerStore(dir string, inMemory bool, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, dataDirPerm); err != nil {
			return nil, fmt.Errorf("creating badger directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

func badgerKey(name, part string) []byte {
	return []byte(badgerPrefix + name + "/" + part)
}

// Save writes every part of snap and drops parts it no longer has.
func (s *BadgerStore) Save(ctx context.Context, snap Snapshot) error {
	if err := checkSave(snap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	createdAt := make([]byte, 8)
	binary.BigEndian.PutUint64(createdAt, uint64(snap.CreatedAt.UnixNano()))

	err := s.db.Update(func(txn *badger.Txn) error {
		parts := map[string][]byte{
			PartCorpus:     snap.Corpus,
			PartVocabulary: snap.Vocabulary,
			PartTF:         snap.TF,
			PartTFIDF:      snap.TFIDF,
			partCreatedAt:  createdAt,
		}
		for part, value := range parts {
			if err := txn.Set(badgerKey(snap.Name, part), value); err != nil {
				return err
			}
		}
		if len(snap.Settings) > 0 {
			return txn.Set(badgerKey(snap.Name, PartSettings), snap.Settings)
		}
		return txn.Delete(badgerKey(snap.Name, PartSettings))
	})
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", snap.Name, err)
	}
	s.logger.Debug("snapshot saved", "corpus", snap.Name)
	return nil
}

// Load reads every part stored for name.
func (s *BadgerStore) Load(ctx context.Context, name string) (Snapshot, error) {
	if err := checkName(name); err != nil {
		return Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Name: name}
	found := 0
	err := s.db.View(func(txn *badger.Txn) error {
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
			item, err := txn.Get(badgerKey(name, target.part))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			*target.dst = value
			found++
		}

		item, err := txn.Get(badgerKey(name, partCreatedAt))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found++
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				snap.CreatedAt = time.Unix(0, int64(binary.BigEndian.Uint64(val))).UTC()
			}
			return nil
		})
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	if found == 0 {
		return Snapshot{}, apperrors.NewSnapshotNotFoundError(name)
	}
	if err := snap.Complete(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// List returns every name with at least one stored part.
func (s *BadgerStore) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPrefix)
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			rest := strings.TrimPrefix(string(iter.Item().Key()), badgerPrefix)
			if i := strings.LastIndex(rest, "/"); i > 0 {
				seen[rest[:i]] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes every part stored for name.
func (s *BadgerStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	deleted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPrefix + name + "/")
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		keys := make([][]byte, 0)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	if deleted == 0 {
		return apperrors.NewSnapshotNotFoundError(name)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
