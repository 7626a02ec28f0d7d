package main

import (
	"context"
	"strings"

	"storydoc/internal/config"
	"storydoc/internal/store"
	"storydoc/internal/store/postgres"
	"storydoc/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	if strings.HasPrefix(cfg.Database.DSN, "sqlite://") {
		return sqlite.New(ctx, cfg.Database.DSN)
	}
	return postgres.New(ctx, cfg.Database.DSN)
}
