package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase_backend/internal/config"
	authentity "purchase_backend/internal/feature/auth/domain/entity"
	"purchase_backend/internal/platform/cache"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{Driver: config.DriverSQLite, RunMigrations: true},
		DB:    config.DBConfig{SQLitePath: filepath.Join(t.TempDir(), "test.db")},
	}
}

func TestNewStores_SQLite(t *testing.T) {
	ctx := context.Background()
	stores, err := NewStores(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, stores.Close(ctx)) }()

	require.Contains(t, stores.Checks, config.DriverSQLite)
	assert.NoError(t, stores.Checks[config.DriverSQLite](ctx))

	// マイグレーション済みのテーブルに書き込めること
	u := &authentity.User{Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, stores.Users.Create(ctx, u))
	got, err := stores.Users.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	stats, err := stores.Invoices.Stats(ctx, u.ID, 5)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalInvoices)
}

func TestNewStores_UnknownDriver(t *testing.T) {
	_, err := NewStores(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mysql"}})
	assert.Error(t, err)
}

func TestNewInvoiceRepository(t *testing.T) {
	ctx := context.Background()
	stores, err := NewStores(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer func() { _ = stores.Close(ctx) }()

	t.Run("without redis the store is used directly", func(t *testing.T) {
		repo := NewInvoiceRepository(nil, config.RedisConfig{}, stores.Invoices)
		assert.Same(t, stores.Invoices, repo)
	})

	t.Run("with redis the store is wrapped", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		repo := NewInvoiceRepository(rdb, config.RedisConfig{StatsTTL: time.Minute}, stores.Invoices)
		assert.IsType(t, &cache.CachingInvoiceRepository{}, repo)
	})
}
