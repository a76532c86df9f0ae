package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authusecase "storefront/internal/feature/auth/usecase"
	catalogadapters "storefront/internal/feature/catalog/adapters"
	catalogusecase "storefront/internal/feature/catalog/usecase"
	"storefront/internal/platform/cache"
	healthhandler "storefront/internal/platform/http/handler"
	"storefront/internal/platform/mail"
)

// NewNotifier returns an SMTP sender when SMTP is configured, otherwise a sender that only logs.
func NewNotifier(cfg mail.Config) authusecase.Notifier {
	if cfg.Enabled() {
		return mail.NewSMTPSender(cfg)
	}
	slog.Warn("SMTP_HOST is not set; emails will be logged instead of sent")
	return mail.LogSender{}
}

// NewProductRepository returns the catalog repository, wrapped in a Redis cache when Redis is available.
func NewProductRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) catalogusecase.ProductRepository {
	repo := catalogadapters.NewProductRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingProductRepository(rdb, ttl, repo, "catalog")
}

// NewHealthChecks returns the readiness probes of the stores in use.
func NewHealthChecks(db *gorm.DB, rdb *redis.Client) []healthhandler.Check {
	checks := []healthhandler.Check{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if rdb != nil {
		checks = append(checks, healthhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	return checks
}
