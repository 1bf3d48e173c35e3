// Package storeopen opens the paper store selected by configuration.
package storeopen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/quizpaper/cmd/quizpaper/sqlitepath"
	"github.com/papercomputeco/quizpaper/pkg/config"
	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/storage"
	"github.com/papercomputeco/quizpaper/pkg/storage/inmemory"
	"github.com/papercomputeco/quizpaper/pkg/storage/postgres"
	"github.com/papercomputeco/quizpaper/pkg/storage/sqlite"
)

// Open returns the storage.Driver for cfg. configDir is the --config-dir
// override used to place the default SQLite file.
func Open(ctx context.Context, cfg config.StorageConfig, configDir string, log *slog.Logger) (storage.Driver, error) {
	log = logger.OrNop(log)

	switch cfg.Driver {
	case config.StorageSQLite, "":
		path, err := sqlitepath.ResolveSQLitePath(cfg.SQLitePath, configDir)
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		log.Info("using SQLite storage", "path", path)
		return driver, nil

	case config.StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("storage.postgres_dsn is required for the %s driver", config.StoragePostgres)
		}
		driver, err := postgres.NewDriver(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil

	case config.StorageMemory:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
