package main

import (
	"context"
	"fmt"

	"codelab/internal/config"
	"codelab/internal/store"
	"codelab/internal/store/postgres"
	"codelab/internal/store/sqlite"
)

// openArchive returns nil when no store driver is configured; the engine
// runs fully in memory in that case.
func openArchive(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "":
		return nil, nil
	case "sqlite":
		db, err = sqlite.New(ctx, cfg.Store.DSN)
	case "postgres":
		db, err = postgres.New(ctx, cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}
