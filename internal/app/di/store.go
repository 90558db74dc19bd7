// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"purchase_backend/internal/config"
	authadapters "purchase_backend/internal/feature/auth/adapters"
	authusecase "purchase_backend/internal/feature/auth/usecase"
	invoiceadapters "purchase_backend/internal/feature/invoice/adapters"
	invoiceusecase "purchase_backend/internal/feature/invoice/usecase"
	"purchase_backend/internal/platform/cache"
	platformdb "purchase_backend/internal/platform/db"
	"purchase_backend/internal/platform/http/handler"
	platformmongo "purchase_backend/internal/platform/mongo"
)

// Stores holds the repositories of the selected store driver.
type Stores struct {
	Users    authusecase.UserRepository
	Invoices invoiceusecase.InvoiceRepository
	// Checks are the readiness probes served by /healthz.
	Checks map[string]handler.Check

	closers []func(context.Context) error
}

// Close releases the underlying connections.
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}

// NewStores opens the store selected by STORE_DRIVER.
// mongo is the default; postgres and sqlite go through gorm.
func NewStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		return newMongoStores(ctx, cfg)
	case config.DriverPostgres, config.DriverSQLite:
		return newGormStores(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newMongoStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	client, database, err := platformmongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}

	users := authadapters.NewUserMongo(database)
	invoices := invoiceadapters.NewInvoiceMongo(database)
	if cfg.Store.RunMigrations {
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		if err := invoices.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return &Stores{
		Users:    users,
		Invoices: invoices,
		Checks: map[string]handler.Check{
			"mongo": func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		},
		closers: []func(context.Context) error{client.Disconnect},
	}, nil
}

func newGormStores(_ context.Context, cfg *config.Config) (*Stores, error) {
	db, err := platformdb.Open(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if cfg.Store.RunMigrations {
		if err := platformdb.Migrate(db, &authadapters.UserModel{}, &invoiceadapters.InvoiceModel{}); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		slog.Info("database migrated", "driver", cfg.Store.Driver)
	}

	return &Stores{
		Users:    authadapters.NewUserGorm(db),
		Invoices: invoiceadapters.NewInvoiceGorm(db),
		Checks: map[string]handler.Check{
			cfg.Store.Driver: sqlDB.PingContext,
		},
		closers: []func(context.Context) error{func(context.Context) error { return sqlDB.Close() }},
	}, nil
}

// NewInvoiceRepository wraps the store's invoice repository with the Redis stats cache.
// With a nil rdb the store is returned unchanged.
func NewInvoiceRepository(rdb *redis.Client, cfg config.RedisConfig, inner invoiceusecase.InvoiceRepository) invoiceusecase.InvoiceRepository {
	if rdb == nil {
		return inner
	}
	return cache.NewCachingInvoiceRepository(rdb, cfg.StatsTTL, inner, "invoice_stats")
}
