// Package db はgormによるリレーショナルDB接続を提供します。
package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"purchase_backend/internal/config"
)

const (
	// connectTimeout は起動時にPostgreSQLの起動を待つ上限です。
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Opener はDSNからgorm接続を開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// gormConfig は一意制約違反などをgorm.ErrDuplicatedKeyに変換する設定です。
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// BuildDSN はPostgreSQL用のkey=value形式のDSNを生成します。
func BuildDSN(cfg config.DBConfig) string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode)
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	return dsn
}

// Open は設定されたドライバー（postgres / sqlite）でDBを開きます。
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		return ConnectWithRetry(BuildDSN(cfg.DB), connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig())
		})
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.DB.SQLitePath), gormConfig())
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", cfg.DB.SQLitePath, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("driver %q is not a gorm driver", cfg.Store.Driver)
	}
}

// ConnectWithRetry は timeout まで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	return connectWithRetry(dsn, timeout, retryInterval, open)
}

func connectWithRetry(dsn string, timeout, interval time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(interval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", interval)
		time.Sleep(interval)
	}
}

// Migrate は渡されたモデルのテーブルを作成・更新します。
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
