package jwtmw

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/shared/identity"
)

// SessionResolver resolves a session ID to the identity it belongs to.
// A missing session must be reported as (nil, nil).
type SessionResolver interface {
	Current(ctx context.Context, sessionID string) (*identity.Identity, error)
}

// SessionLoader returns a middleware that verifies the session cookie and, when it
// references a live session, stores the identity in the request context.
// Requests without a valid session continue anonymously.
func SessionLoader(signer *Signer, sessions SessionResolver, cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessionToken(c, cfg)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := signer.Parse(raw)
		if err != nil {
			slog.Debug("ignoring invalid session cookie", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}

		id, err := sessions.Current(c.Request.Context(), claims.SessionID)
		if err != nil {
			slog.Error("session lookup failed", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.Fail("Server error."))
			return
		}
		if id != nil {
			if uid, err := claims.UserID(); err != nil || uid != id.UserID {
				slog.Warn("session cookie subject mismatch", "session_user", id.UserID, "remote_addr", c.ClientIP())
				c.Next()
				return
			}
			c.Request = c.Request.WithContext(identity.NewContext(c.Request.Context(), id))
		}
		c.Next()
	}
}

// AuthRequired rejects requests that carry no session identity with 401.
// It must run after SessionLoader.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity.FromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail("Not authenticated."))
			return
		}
		c.Next()
	}
}
