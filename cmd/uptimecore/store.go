package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/config"
	"github.com/hamed0406/uptimecore/internal/repo"
	"github.com/hamed0406/uptimecore/internal/repo/memory"
	"github.com/hamed0406/uptimecore/internal/repo/postgres"
	"github.com/hamed0406/uptimecore/internal/repo/sqlite"
)

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repo.Store, error) {
	switch cfg.StoreKind() {
	case "postgres":
		pg, err := postgres.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return pg, nil
	case "sqlite":
		lite, err := sqlite.New(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return memory.New(), nil
	}
}
