package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"purchase_backend/internal/app/di"
	"purchase_backend/internal/app/router"
	"purchase_backend/internal/config"
	authhandler "purchase_backend/internal/feature/auth/transport/handler"
	authusecase "purchase_backend/internal/feature/auth/usecase"
	invoicehandler "purchase_backend/internal/feature/invoice/transport/handler"
	invoiceusecase "purchase_backend/internal/feature/invoice/usecase"
	receipthandler "purchase_backend/internal/feature/receipt/transport/handler"
	"purchase_backend/internal/platform/http/handler"
	jwtmw "purchase_backend/internal/platform/jwt"
	platformredis "purchase_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ストア
	stores, err := di.NewStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()
	slog.Info("store ready", "driver", cfg.Store.Driver)

	// Redis（任意）
	rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable. Running without stats cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		stores.Checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Redisキャッシュでラップ
	invoiceRepo := di.NewInvoiceRepository(rdb, cfg.Redis, stores.Invoices)

	tokens, err := jwtmw.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	receiptUC, closeReceipt := di.NewReceiptUsecase(ctx, cfg.Receipt)
	defer func() {
		if err := closeReceipt(); err != nil {
			slog.Error("failed to close receipt clients", "error", err)
		}
	}()

	// Usecase
	authUC := authusecase.NewAuthUsecase(stores.Users, tokens)
	invoiceUC := invoiceusecase.NewInvoiceUsecase(invoiceRepo)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, cfg.Auth.TokenTTL)
	invoiceH := invoicehandler.NewInvoiceHandler(invoiceUC)
	receiptH := receipthandler.NewReceiptHandler(receiptUC)
	healthH := handler.NewHealthHandler(stores.Checks)

	// ルータ生成
	r := router.NewRouter(jwtmw.NewGate(tokens, stores.Users), healthH, authH, invoiceH, receiptH)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogger は本番ではJSON、それ以外ではテキスト形式のslogを設定します。
func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
		gin.SetMode(gin.ReleaseMode)
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}
