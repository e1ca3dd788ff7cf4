package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	name       TEXT PRIMARY KEY,
	corpus     BLOB,
	vocabulary BLOB,
	tf         BLOB,
	tfidf      BLOB,
	settings   BLOB,
	created_at INTEGER NOT NULL
)`

// SQLiteStore keeps snapshots as rows of a single table keyed by corpus name.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ SnapshotStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) snapshots.db inside dataDir.
func NewSQLiteStore(dataDir string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "snapshots.db")

	// WAL mode for concurrent readers
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshots table: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath, logger: logger}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Save upserts the row for snap.Name.
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	if err := checkSave(snap); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, corpus, vocabulary, tf, tfidf, settings, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			corpus = excluded.corpus,
			vocabulary = excluded.vocabulary,
			tf = excluded.tf,
			tfidf = excluded.tfidf,
			settings = excluded.settings,
			created_at = excluded.created_at
	`, snap.Name, snap.Corpus, snap.Vocabulary, snap.TF, snap.TFIDF, snap.Settings, snap.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", snap.Name, err)
	}
	s.logger.Debug("snapshot saved", "corpus", snap.Name, "db", s.path)
	return nil
}

// Load reads the row for name.
func (s *SQLiteStore) Load(ctx context.Context, name string) (Snapshot, error) {
	if err := checkName(name); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Name: name}
	var createdAt int64
	row := s.db.QueryRowContext(ctx, `
		SELECT corpus, vocabulary, tf, tfidf, settings, created_at
		FROM snapshots WHERE name = ?
	`, name)
	err := row.Scan(&snap.Corpus, &snap.Vocabulary, &snap.TF, &snap.TFIDF, &snap.Settings, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, apperrors.NewSnapshotNotFoundError(name)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	snap.CreatedAt = time.Unix(0, createdAt).UTC()

	if err := snap.Complete(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// List returns every stored name.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning snapshot name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the row for name.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewSnapshotNotFoundError(name)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
