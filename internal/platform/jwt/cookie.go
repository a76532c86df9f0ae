package jwtmw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieName is used when CookieConfig.Name is empty.
const DefaultCookieName = "storefront_session"

func (cfg CookieConfig) name() string {
	if cfg.Name == "" {
		return DefaultCookieName
	}
	return cfg.Name
}

// SetSessionCookie writes the signed session token as an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, cfg CookieConfig, token string, ttl time.Duration) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.name(), token, int(ttl.Seconds()), "/", cfg.Domain, cfg.Secure, true)
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.name(), "", -1, "/", cfg.Domain, cfg.Secure, true)
}

// sessionToken returns the raw cookie value, or "" when absent.
func sessionToken(c *gin.Context, cfg CookieConfig) string {
	token, err := c.Cookie(cfg.name())
	if err != nil {
		return ""
	}
	return token
}
