// Package router builds the HTTP routes of the storefront API.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/app/di"
	"storefront/internal/platform/http/middleware"
	jwtmw "storefront/internal/platform/jwt"
	"storefront/internal/platform/metrics"
)

// NewRouter returns the gin engine serving every route of app.
func NewRouter(app *di.App) *gin.Engine {
	r := gin.New()
	// ClientIP keys the rate limiter; only configured proxies may set X-Forwarded-For
	if err := r.SetTrustedProxies(app.Config.TrustedProxies); err != nil {
		slog.Error("invalid trusted proxies; trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, api.Fail("Method not allowed."))
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.Fail("Not found."))
	})

	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		metrics.Middleware(),
		cors.New(corsConfig(app.Config.AllowedOrigins)),
	)

	// 導通確認用
	r.GET("/healthz", app.Health.Health)
	r.HEAD("/healthz", app.Health.Health)
	r.OPTIONS("/healthz", app.Health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := r.Group("/api")
	// セッションCookieがあれば全ルートでIdentityを解決する
	apiGroup.Use(jwtmw.SessionLoader(app.Signer, app.Sessions, app.Config.Cookie))

	apiGroup.GET("/products", app.Products.List)

	auth := apiGroup.Group("/auth")
	{
		limited := app.AuthLimiter.Middleware()
		auth.POST("/register", limited, app.Auth.Register)
		auth.POST("/login", limited, app.Auth.Login)
		auth.POST("/forgot_password", limited, app.Auth.ForgotPassword)
		auth.POST("/reset_password", limited, app.Auth.ResetPassword)
		auth.GET("/verify", app.Auth.Verify)
		auth.GET("/logout", app.Auth.Logout)
		auth.POST("/logout", app.Auth.Logout)
	}

	// 認証必須のルート
	authed := apiGroup.Group("/")
	authed.Use(jwtmw.AuthRequired())
	{
		authed.GET("/auth/check_session", app.Auth.CheckSession)
		authed.GET("/auth/profile", app.Auth.Profile)
		authed.POST("/checkout", app.Checkout.Checkout)
	}

	return r
}

// corsConfig allows the storefront origins to send the session cookie.
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID}
	cfg.ExposeHeaders = []string{middleware.HeaderRequestID}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
