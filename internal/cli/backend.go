package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-platform/internal/config"
	"quiz-platform/internal/infra/filestore"
	"quiz-platform/internal/infra/memory"
	"quiz-platform/internal/infra/postgres"
	"quiz-platform/internal/infra/sqlite"
	"quiz-platform/internal/store"
)

// openBackend builds the record store selected by storage.driver.
// The returned func releases its connections.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case "", "file":
		b, err := filestore.New(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("storage: json files in %s", cfg.Storage.DataDir)
		return b, noop, nil
	case "memory":
		log.Printf("storage: in-memory, data is lost on exit")
		return memory.NewDocumentStore(), noop, nil
	case "sqlite":
		b, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("storage: sqlite at %s", cfg.Storage.SQLitePath)
		return b, func() { _ = b.Close() }, nil
	case "postgres":
		if err := runMigrations(ctx, cfg.Storage.PostgresURL); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Printf("storage: postgres")
		return postgres.NewDocumentStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
