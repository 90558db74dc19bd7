// Package config はプロセス起動時に一度だけ構築されるアプリケーション設定を提供します。
// 各コンポーネントは環境変数を直接読まず、この構造体をコンストラクタで受け取ります。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ストアドライバー名
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Port   string `env:"PORT" envDefault:"8080"`
	AppEnv string `env:"APP_ENV" envDefault:"dev"`

	Auth    AuthConfig
	Store   StoreConfig
	Mongo   MongoConfig
	DB      DBConfig
	Redis   RedisConfig
	Receipt ReceiptConfig
}

// AuthConfig はトークン署名の設定です。
// Secret はログに出力してはいけません。
type AuthConfig struct {
	Secret   string        `env:"SECRET_KEY"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// StoreConfig は永続化層の選択です。
type StoreConfig struct {
	Driver        string `env:"STORE_DRIVER" envDefault:"mongo"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// MongoConfig はドキュメントストアの接続設定です。
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DATABASE" envDefault:"purchase_manager"`
}

// DBConfig はgormで扱うリレーショナルDBの接続設定です。
type DBConfig struct {
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"postgres"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME" envDefault:"purchase_manager"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"purchase.db"`
}

// RedisConfig はダッシュボード統計キャッシュの設定です。Hostが空の場合キャッシュは無効です。
type RedisConfig struct {
	Host     string        `env:"REDIS_HOST"`
	Port     string        `env:"REDIS_PORT" envDefault:"6379"`
	Password string        `env:"REDIS_PASSWORD"`
	StatsTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`
}

// Addr はRedisの接続先（host:port）を返します。
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Enabled はRedisキャッシュを使用するかどうかを返します。
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// ReceiptConfig はレシート解析（Gemini / Vision）の設定です。
type ReceiptConfig struct {
	Model              string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Timeout            time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	RateLimitPerMinute int           `env:"AI_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	OCREnabled         bool          `env:"RECEIPT_OCR_ENABLED" envDefault:"false"`
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod"
}

// Load は .env（存在する場合）と環境変数から設定を読み込み、検証します。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は起動に必要な設定が揃っているかを検証します。
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("SECRET_KEY is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Receipt.RateLimitPerMinute <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_PER_MINUTE must be positive, got %d", c.Receipt.RateLimitPerMinute)
	}
	return nil
}
