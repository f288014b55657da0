package di

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	assetadapters "github.com/Kaligetsagency/aifx/internal/feature/assets/adapters"
	"github.com/Kaligetsagency/aifx/internal/feature/assets/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/platform/config"
	"github.com/Kaligetsagency/aifx/internal/platform/db"
	infraredis "github.com/Kaligetsagency/aifx/internal/platform/redis"
)

// NewAssetDB opens the asset catalog database, migrates it and seeds the default instruments.
func NewAssetDB(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	gdb, err := db.OpenDB(db.Config{
		Driver:      cfg.Driver,
		DSN:         cfg.DSN,
		AutoMigrate: cfg.AutoMigrate,
	}, &entity.Asset{})
	if err != nil {
		return nil, err
	}
	if err := assetadapters.NewAssetRepository(gdb).Seed(ctx, assetadapters.DefaultAssets); err != nil {
		return nil, err
	}
	return gdb, nil
}

// NewRedis connects to Redis when it is configured. It returns nil when Redis
// is disabled or unreachable so that the service runs without the candle cache.
func NewRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.Config{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err, "addr", cfg.Addr())
		return nil
	}
	return rdb
}
