// Package jwtmw signs the session cookie and loads the session identity for each request.
package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// ErrInvalidCookie is returned when a session cookie fails signature or claim validation.
var ErrInvalidCookie = errors.New("invalid session cookie")

// SessionClaims is the payload of the session cookie.
// The cookie only references a server-side session; it never carries profile data.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the claims.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidCookie)
	}
	return uint(id), nil
}

// Signer signs and verifies session cookies with HS256.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a Signer. The secret must not be empty.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%s is not set", EnvKeyJWTSecret)
	}
	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

// Sign creates a signed token referencing the session.
func (s *Signer) Sign(sessionID string, userID uint, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token and returns its claims.
func (s *Signer) Parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// HMAC以外の署名アルゴリズムは拒否
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing sid", ErrInvalidCookie)
	}
	return claims, nil
}
