// Package bootstrap connects the runtime dependencies shared by the server
// and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"brewlog/internal/cache"
	"brewlog/internal/config"
	"brewlog/internal/database"
	"brewlog/internal/middleware"
	"brewlog/internal/observability"
	"brewlog/internal/seed"

	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SeedDemoData fills an empty development database with demo content.
	SeedDemoData bool
}

// InitRuntime connects to the database and Redis. The returned cache has no
// client when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *cache.Cache, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := observability.RegisterQueryMetrics(db); err != nil {
		middleware.Logger.Warn("query metrics unavailable", slog.String("error", err.Error()))
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	c := cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemoData {
		if err := seedIfEmpty(ctx, cfg, db); err != nil {
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	return db, c, nil
}

// seedIfEmpty seeds only in development and only when no profile exists.
func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Table("profiles").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := seed.Seed(ctx, db, seed.DefaultOptions())
	return err
}
