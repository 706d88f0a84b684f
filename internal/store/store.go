// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/lexdrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for words and quiz history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
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
		`CREATE TABLE IF NOT EXISTS words (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			recorded_at TEXT NOT NULL,
			direction TEXT NOT NULL,
			total_words INTEGER NOT NULL,
			correct_answers INTEGER NOT NULL,
			incorrect_answers INTEGER NOT NULL,
			percentage INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history_results (
			history_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			word_id TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			user_answer TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			PRIMARY KEY (history_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_recorded_at ON history(recorded_at);`,
		`CREATE INDEX IF NOT EXISTS idx_history_results_word ON history_results(word_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddWords stores word pairs in one transaction, skipping pairs whose
// source and target already exist. It returns the number inserted.
func (s *Store) AddWords(ctx context.Context, words []model.WordPair) (n int, err error) {
	if len(words) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO words (id, source, target, created_at)
		 SELECT ?, ?, ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM words WHERE source = ? AND target = ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, w := range words {
		res, err := stmt.ExecContext(ctx, w.ID, w.Source, w.Target, w.CreatedAt.UTC().Format(time.RFC3339Nano), w.Source, w.Target)
		if err != nil {
			return 0, fmt.Errorf("insert word %q: %w", w.Source, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		n += int(affected)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// ListWords returns all word pairs in insertion order.
func (s *Store) ListWords(ctx context.Context) ([]model.WordPair, error) {
	return s.queryWords(ctx, `SELECT id, source, target, created_at FROM words ORDER BY seq ASC`)
}

// Snapshot returns the current word list. It satisfies quiz.WordSource.
func (s *Store) Snapshot(ctx context.Context) ([]model.WordPair, error) {
	return s.ListWords(ctx)
}

// FindWords returns words whose ID starts with prefix.
func (s *Store) FindWords(ctx context.Context, prefix string) ([]model.WordPair, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	return s.queryWords(ctx,
		`SELECT id, source, target, created_at FROM words WHERE substr(id, 1, ?) = ? ORDER BY seq ASC`,
		len(prefix), prefix)
}

// DeleteWord removes a word by ID. History rows keep their copies.
func (s *Store) DeleteWord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("word %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearWords removes every word and returns how many were deleted.
func (s *Store) ClearWords(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM words`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) queryWords(ctx context.Context, query string, args ...any) ([]model.WordPair, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var words []model.WordPair
	for rows.Next() {
		var w model.WordPair
		var createdAt string
		if err := rows.Scan(&w.ID, &w.Source, &w.Target, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, err
		}
		w.CreatedAt = parsed
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
