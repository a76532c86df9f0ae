// Package config assembles the server configuration from environment variables.
package config

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	checkout "storefront/internal/feature/checkout/usecase"
	jwtmw "storefront/internal/platform/jwt"
)

// Config holds the server-level settings.
type Config struct {
	Port           string
	AllowedOrigins []string
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string

	BaseURL       string // public URL of this API, used to build activation links
	LoginPageURL  string // linked from the activation confirmation page
	ResetPageURL  string // client page that receives reset_token
	JWTSecret     string
	Cookie        jwtmw.CookieConfig
	SessionTTL    time.Duration
	SessionMax    int
	BcryptCost    int
	ResetTokenTTL time.Duration

	ShippingCost     decimal.Decimal
	UnresolvedPolicy checkout.UnresolvedPolicy

	AuthRatePerMinute int
	AuthRateBurst     int

	CatalogCacheTTL time.Duration
}

// ActivationURL is the verify endpoint embedded in activation emails.
func (c Config) ActivationURL() string {
	return c.BaseURL + "/api/auth/verify"
}

// Load reads the configuration. Unset variables fall back to development defaults;
// malformed values are reported as errors.
func Load() (Config, error) {
	cfg := Config{
		Port:           envString("PORT", "8080"),
		AllowedOrigins: splitList(envString("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		BaseURL:        strings.TrimRight(envString("APP_BASE_URL", "http://localhost:8080"), "/"),
		JWTSecret:      os.Getenv(jwtmw.EnvKeyJWTSecret),
	}
	cfg.LoginPageURL = envString("LOGIN_PAGE_URL", cfg.BaseURL+"/login.html")
	cfg.ResetPageURL = envString("RESET_PAGE_URL", cfg.BaseURL+"/reset_password.html")

	for _, p := range cfg.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return Config{}, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", p)
			}
		}
	}

	var err error
	if cfg.Cookie, err = loadCookie(); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SessionMax, err = envInt("SESSION_MAX_PER_USER", 5); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = envInt("BCRYPT_COST", 0); err != nil {
		return Config{}, err
	}
	if cfg.ResetTokenTTL, err = envDuration("RESET_TOKEN_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.AuthRatePerMinute, err = envInt("AUTH_RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return Config{}, err
	}
	if cfg.AuthRateBurst, err = envInt("AUTH_RATE_LIMIT_BURST", 5); err != nil {
		return Config{}, err
	}
	if cfg.CatalogCacheTTL, err = envDuration("CATALOG_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}

	cfg.ShippingCost = checkout.DefaultShippingCost
	if v := os.Getenv("SHIPPING_COST"); v != "" {
		cost, err := decimal.NewFromString(v)
		if err != nil || cost.IsNegative() {
			return Config{}, fmt.Errorf("invalid SHIPPING_COST %q", v)
		}
		cfg.ShippingCost = cost
	}
	if cfg.UnresolvedPolicy, err = checkout.ParseUnresolvedPolicy(os.Getenv("CHECKOUT_UNRESOLVED_POLICY")); err != nil {
		return Config{}, fmt.Errorf("invalid CHECKOUT_UNRESOLVED_POLICY: %w", err)
	}
	return cfg, nil
}

func loadCookie() (jwtmw.CookieConfig, error) {
	secure, err := envBool("COOKIE_SECURE", false)
	if err != nil {
		return jwtmw.CookieConfig{}, err
	}
	cfg := jwtmw.CookieConfig{
		Name:   envString("COOKIE_NAME", jwtmw.DefaultCookieName),
		Domain: os.Getenv("COOKIE_DOMAIN"),
		Secure: secure,
	}
	switch strings.ToLower(envString("COOKIE_SAMESITE", "lax")) {
	case "lax":
		cfg.SameSite = http.SameSiteLaxMode
	case "strict":
		cfg.SameSite = http.SameSiteStrictMode
	case "none":
		// browsers drop SameSite=None cookies that are not Secure
		cfg.SameSite = http.SameSiteNoneMode
		cfg.Secure = true
	default:
		return jwtmw.CookieConfig{}, fmt.Errorf("invalid COOKIE_SAMESITE %q", os.Getenv("COOKIE_SAMESITE"))
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
