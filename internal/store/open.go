package store

import (
	"context"
	"fmt"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/config"
)

// Open builds the Store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "", "sqlite":
		return NewSQLiteStore(cfg.DatabaseURL)
	case "redis":
		return NewRedisStore(cfg.RedisURL)
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
