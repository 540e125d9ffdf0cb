// Package state persists build records across watch-mode rebuilds, backed
// by SQLite. The stored content hash lets the watcher skip rebuilds whose
// source tree is unchanged.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed build record store.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// BuildRecord is one persisted build result.
type BuildRecord struct {
	BuildID     string
	ContentHash string
	ArchivePath string
	Cards       int
	Outcome     string
	CreatedAt   time.Time
}

// Open creates or opens a build state store. Use ":memory:" for an
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY on concurrent writers
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		archive_path TEXT,
		cards INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_content_hash ON builds(content_hash);
	CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends a build record.
func (s *Store) Record(ctx context.Context, rec BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, content_hash, archive_path, cards, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.BuildID, rec.ContentHash, rec.ArchivePath, rec.Cards, rec.Outcome, createdAt.Unix())
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// LastSuccessfulHash returns the content hash of the most recent successful
// build, or "" when none exists.
func (s *Store) LastSuccessfulHash(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash FROM builds WHERE outcome = 'success' ORDER BY id DESC LIMIT 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last successful build: %w", err)
	}
	return hash, nil
}

// History returns the most recent build records, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]BuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, content_hash, archive_path, cards, outcome, created_at
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query build history: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var createdAt int64
		if err := rows.Scan(&rec.BuildID, &rec.ContentHash, &rec.ArchivePath, &rec.Cards, &rec.Outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
