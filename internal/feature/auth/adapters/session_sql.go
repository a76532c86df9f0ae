package adapters

import (
	"context"
	"errors"
	"time"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/usecase"

	"gorm.io/gorm"
)

// revokedRetention is how long revoked sessions are kept for auditing before DeleteExpired drops them.
const revokedRetention = 24 * time.Hour

// sessionSQL stores sessions in the relational database.
// It is the fallback store when Redis is not reachable.
type sessionSQL struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.SessionRepository = (*sessionSQL)(nil)

// NewSessionSQL creates a new instance of sessionSQL.
func NewSessionSQL(db *gorm.DB) *sessionSQL {
	return &sessionSQL{db: db, now: time.Now}
}

// active scopes a query to the user's sessions that are neither revoked nor expired.
func (r *sessionSQL) active(userID uint) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, r.now())
	}
}

// Create persists a new session.
func (r *sessionSQL) Create(ctx context.Context, session *entity.Session) error {
	return r.db.WithContext(ctx).Create(SessionModelFromEntity(session)).Error
}

// FindByID retrieves a session by its ID, including revoked and expired ones.
func (r *sessionSQL) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return model.ToEntity(), nil
}

// Revoke stamps revoked_at on the session.
func (r *sessionSQL) Revoke(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes every open session of the user.
func (r *sessionSQL) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now()).Error
}

// DeleteExpired removes expired sessions and sessions revoked more than a day ago.
func (r *sessionSQL) DeleteExpired(ctx context.Context) (int64, error) {
	now := r.now()
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", now, now.Add(-revokedRetention)).
		Delete(&SessionModel{})
	return result.RowsAffected, result.Error
}

// CountByUserID returns the number of active sessions for a user.
func (r *sessionSQL) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Scopes(r.active(userID)).
		Count(&count).Error
	return count, err
}

// DeleteOldestByUserID deletes the user's oldest active session, if any.
func (r *sessionSQL) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	var oldest SessionModel
	err := r.db.WithContext(ctx).
		Scopes(r.active(userID)).
		Order("created_at ASC").
		First(&oldest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", oldest.ID).Error
}
