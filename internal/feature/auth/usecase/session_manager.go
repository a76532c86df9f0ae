package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/shared/identity"
)

const (
	defaultSessionTTL         = 7 * 24 * time.Hour
	defaultMaxSessionsPerUser = 5
)

// ClientInfo describes the client that opened a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// SessionManager establishes, inspects and destroys server-side sessions.
type SessionManager struct {
	repo       SessionRepository
	ttl        time.Duration
	maxPerUser int
	newID      TokenGenerator
	now        func() time.Time
}

// NewSessionManager creates a SessionManager backed by repo.
// A zero ttl or maxPerUser falls back to 7 days and 5 sessions.
func NewSessionManager(repo SessionRepository, ttl time.Duration, maxPerUser int) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if maxPerUser <= 0 {
		maxPerUser = defaultMaxSessionsPerUser
	}
	return &SessionManager{
		repo:       repo,
		ttl:        ttl,
		maxPerUser: maxPerUser,
		newID:      RandomToken,
		now:        time.Now,
	}
}

// Establish opens a new session for the user.
// When the user already holds the maximum number of sessions the oldest one is dropped.
func (m *SessionManager) Establish(ctx context.Context, userID uint, name, email string, client ClientInfo) (*entity.Session, error) {
	count, err := m.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if count >= int64(m.maxPerUser) {
		if err := m.repo.DeleteOldestByUserID(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to drop oldest session: %w", err)
		}
	}

	id, err := m.newID()
	if err != nil {
		return nil, err
	}
	now := m.now()
	session := &entity.Session{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Email:     email,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Current resolves a session ID to the identity it carries.
// A missing, expired or revoked session yields (nil, nil).
func (m *SessionManager) Current(ctx context.Context, sessionID string) (*identity.Identity, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := m.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if session.IsRevoked() || !session.ExpiresAt.After(m.now()) {
		return nil, nil
	}
	return &identity.Identity{
		UserID:    session.UserID,
		Name:      session.Name,
		Email:     session.Email,
		SessionID: session.ID,
	}, nil
}

// Destroy revokes the session. Unknown sessions are ignored.
func (m *SessionManager) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.repo.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// RevokeAll revokes every session of the user.
func (m *SessionManager) RevokeAll(ctx context.Context, userID uint) error {
	return m.repo.RevokeAllByUserID(ctx, userID)
}

// PurgeExpired deletes expired sessions from storages that do not expire them on their own.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("expired sessions purged", "count", n)
	}
	return n, nil
}
