package backend

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/backend/local"
	"storefront/internal/backend/relational"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/pkg/db"
)

var (
	_ Backend = (*local.Backend)(nil)
	_ Backend = (*relational.Backend)(nil)
	_ Backend = (*Unavailable)(nil)
)

// Open builds the backend named by cfg.Backend. It is called once at startup.
func Open(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		b, err := local.Open(ctx, cfg.LocalDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open local backend: %w", err)
		}
		return b, nil

	case config.BackendPostgres:
		database, err := db.NewPostgresDB(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres backend: %w", err)
		}

		b := relational.NewBackend(database, relational.NewRepositories(), relational.DefaultTxFuncs(), nil, logger)
		if cfg.Redis.Addr != "" {
			client, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				// The cache is an optimization; the backend works without it.
				logger.Warn("Catalog cache disabled", "addr", cfg.Redis.Addr, "error", err)
			} else {
				b.UseCatalogCache(cache.NewCatalogCache(client, cfg.CatalogTTL), client)
				logger.Info("Catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.CatalogTTL)
			}
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
