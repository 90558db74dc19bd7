// Package redis はダッシュボード統計キャッシュ用のRedisクライアントを提供します。
package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"purchase_backend/internal/config"
)

const pingTimeout = 5 * time.Second

// NewRedisClient は設定からRedisクライアントを生成し、疎通を確認します。
// REDIS_HOST が未設定の場合は (nil, nil) を返し、キャッシュは無効になります。
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		slog.Info("Redis not configured; stats cache disabled")
		return nil, nil
	}

	rdb := redis.NewClient(options(cfg))

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", cfg.Addr(), "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.Addr())
	return rdb, nil
}

func options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	}
}
