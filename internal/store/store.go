// Package store persists finished dictations to SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"handsfree/internal/domain"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for dictation history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dictations (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			word_count INTEGER NOT NULL,
			transcript TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_dictations_started_at ON dictations(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertDictation stores a finished dictation and returns its row id.
func (s *Store) InsertDictation(ctx context.Context, startedAt time.Time, duration time.Duration, wordCount int, transcript string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO dictations (started_at, duration_ms, word_count, transcript)
		 VALUES (?, ?, ?, ?)`,
		startedAt.Format(time.RFC3339Nano),
		duration.Milliseconds(),
		wordCount,
		transcript,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentDictations returns the newest dictations first, at most limit rows.
func (s *Store) RecentDictations(ctx context.Context, limit int) ([]domain.DictationRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, word_count, transcript
		 FROM dictations
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []domain.DictationRecord
	for rows.Next() {
		var rec domain.DictationRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.DurationMs, &rec.WordCount, &rec.Transcript); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
