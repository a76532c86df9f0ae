// Package di provides dependency injection factories for creating application components.
package di

import (
	authadapters "storefront/internal/feature/auth/adapters"
	"storefront/internal/feature/auth/usecase"
	"storefront/internal/platform/session"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL sessions table.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, "session")
	}
	return authadapters.NewSessionSQL(db)
}
