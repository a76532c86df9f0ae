package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the amount of randomness behind every activation, reset and session token.
const tokenBytes = 32

// TokenGenerator produces opaque random tokens.
type TokenGenerator func() (string, error)

// RandomToken returns 32 bytes from crypto/rand encoded as 64 hex characters.
func RandomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
