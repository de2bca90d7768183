// Package sqlite stores collection snapshots in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
	"quiz-platform/internal/store"
)

const schema = `CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	data       TEXT NOT NULL DEFAULT '[]',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// DocumentStore keeps one row per collection.
type DocumentStore struct {
	db *sql.DB
	// SQLite allows one writer; serializing updates in-process avoids SQLITE_BUSY on upgrade.
	mu sync.Mutex
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*DocumentStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DocumentStore{db: db}, nil
}

func (s *DocumentStore) Close() error {
	return s.db.Close()
}

func (s *DocumentStore) Read(ctx context.Context, c store.Collection) ([]byte, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE name=?`, string(c)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", c, err)
	}
	return []byte(raw), nil
}

func (s *DocumentStore) Write(ctx context.Context, c store.Collection, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return upsert(ctx, s.db, c, data)
}

func (s *DocumentStore) Update(ctx context.Context, c store.Collection, fn func([]byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current []byte
	var raw string
	err = tx.QueryRowContext(ctx, `SELECT data FROM collections WHERE name=?`, string(c)).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("load collection %s: %w", c, err)
	default:
		current = []byte(raw)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if err := upsert(ctx, tx, c, next); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, c store.Collection, data []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO collections (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`,
		string(c), string(data))
	if err != nil {
		return fmt.Errorf("save collection %s: %w", c, err)
	}
	return nil
}
