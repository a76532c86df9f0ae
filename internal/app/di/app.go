package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront/internal/app/config"
	"storefront/internal/app/jobs"
	authadapters "storefront/internal/feature/auth/adapters"
	authhandler "storefront/internal/feature/auth/transport/handler"
	authusecase "storefront/internal/feature/auth/usecase"
	cataloghandler "storefront/internal/feature/catalog/transport/handler"
	catalogusecase "storefront/internal/feature/catalog/usecase"
	checkoutadapters "storefront/internal/feature/checkout/adapters"
	checkouthandler "storefront/internal/feature/checkout/transport/handler"
	checkoutusecase "storefront/internal/feature/checkout/usecase"
	healthhandler "storefront/internal/platform/http/handler"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/platform/mail"
	"storefront/internal/shared/ratelimiter"
)

// App holds the wired components the router and the scheduler need.
type App struct {
	Config      config.Config
	Auth        *authhandler.AuthHandler
	Products    *cataloghandler.ProductHandler
	Checkout    *checkouthandler.CheckoutHandler
	Health      *healthhandler.HealthHandler
	Signer      *jwtmw.Signer
	Sessions    *authusecase.SessionManager
	AuthLimiter *ratelimiter.RateLimiter
	Maintenance *jobs.Maintenance
}

// NewApp wires repositories, usecases and handlers. rdb may be nil.
func NewApp(cfg config.Config, db *gorm.DB, rdb *redis.Client, mailCfg mail.Config) (*App, error) {
	signer, err := jwtmw.NewSigner(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("session cookie signer: %w", err)
	}

	// Repository
	userRepo := authadapters.NewUserMySQL(db)
	sessionRepo := NewSessionRepository(rdb, db)
	productRepo := NewProductRepository(db, rdb, cfg.CatalogCacheTTL)
	orderRepo := checkoutadapters.NewOrderRepository(db)

	// Usecase
	sessions := authusecase.NewSessionManager(sessionRepo, cfg.SessionTTL, cfg.SessionMax)
	authUC := authusecase.NewAuthUsecase(userRepo, NewNotifier(mailCfg), sessions, authusecase.Config{
		BcryptCost:    cfg.BcryptCost,
		ResetTokenTTL: cfg.ResetTokenTTL,
		ActivationURL: cfg.ActivationURL(),
		ResetURL:      cfg.ResetPageURL,
	})
	catalogUC := catalogusecase.NewCatalogUsecase(productRepo)
	orderUC := checkoutusecase.NewOrderUsecase(orderRepo, checkoutusecase.Config{
		ShippingCost: &cfg.ShippingCost,
		Unresolved:   cfg.UnresolvedPolicy,
	})

	limiter := ratelimiter.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)

	return &App{
		Config:      cfg,
		Auth:        authhandler.NewAuthHandler(authUC, sessions, signer, cfg.Cookie, cfg.LoginPageURL),
		Products:    cataloghandler.NewProductHandler(catalogUC),
		Checkout:    checkouthandler.NewCheckoutHandler(orderUC),
		Health:      healthhandler.NewHealthHandler(NewHealthChecks(db, rdb)...),
		Signer:      signer,
		Sessions:    sessions,
		AuthLimiter: limiter,
		Maintenance: &jobs.Maintenance{
			Sessions: sessions,
			Resets:   authUC,
			Limiters: []jobs.Sweeper{limiter},
		},
	}, nil
}
