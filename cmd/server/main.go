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

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"storefront/internal/app/config"
	"storefront/internal/app/di"
	"storefront/internal/app/jobs"
	"storefront/internal/app/router"
	authadapters "storefront/internal/feature/auth/adapters"
	authentity "storefront/internal/feature/auth/domain/entity"
	catalogentity "storefront/internal/feature/catalog/domain/entity"
	checkoutentity "storefront/internal/feature/checkout/domain/entity"
	infradb "storefront/internal/platform/db"
	"storefront/internal/platform/mail"
	infraredis "storefront/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv(),
		&authentity.User{}, &authadapters.SessionModel{},
		&catalogentity.Product{}, &catalogentity.ProductImage{},
		&checkoutentity.Order{}, &checkoutentity.OrderItem{},
	)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis（未設定または接続不可ならSQLセッションとキャッシュなしで起動）
	var rdb *redisv9.Client
	if redisCfg := infraredis.LoadConfigFromEnv(); redisCfg.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = infraredis.NewRedisClient(ctx, redisCfg)
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable. Running with SQL sessions and without cache.", "error", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	app, err := di.NewApp(cfg, db, rdb, mail.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to wire application", "error", err)
		os.Exit(1)
	}

	scheduler, err := jobs.NewScheduler(os.Getenv("MAINTENANCE_SCHEDULE"), app.Maintenance)
	if err != nil {
		slog.Error("invalid MAINTENANCE_SCHEDULE", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
