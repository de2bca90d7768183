package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-platform/internal/store"
)

// DocumentStore keeps each collection snapshot as one JSONB row of the collections table.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Read(ctx context.Context, c store.Collection) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM collections WHERE name=$1`, string(c)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", c, err)
	}
	return raw, nil
}

func (s *DocumentStore) Write(ctx context.Context, c store.Collection, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO collections (name, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		string(c), string(data))
	if err != nil {
		return fmt.Errorf("save collection %s: %w", c, err)
	}
	return nil
}

// Update locks the collection row for the duration of fn.
func (s *DocumentStore) Update(ctx context.Context, c store.Collection, fn func([]byte) ([]byte, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The row must exist before FOR UPDATE can serialize writers on it.
	if _, err := tx.Exec(ctx, `INSERT INTO collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, string(c)); err != nil {
		return fmt.Errorf("ensure collection %s: %w", c, err)
	}
	var raw []byte
	if err := tx.QueryRow(ctx, `SELECT data FROM collections WHERE name=$1 FOR UPDATE`, string(c)).Scan(&raw); err != nil {
		return fmt.Errorf("lock collection %s: %w", c, err)
	}

	next, err := fn(raw)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE collections SET data=$2, updated_at=now() WHERE name=$1`, string(c), string(next)); err != nil {
		return fmt.Errorf("save collection %s: %w", c, err)
	}
	return tx.Commit(ctx)
}
