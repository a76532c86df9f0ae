// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered storefront customer.
// It contains authentication credentials, profile data and the token state
// used for account activation and password reset.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users and is matched exactly.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash of the user's password.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	FirstName string     `gorm:"size:100"`
	LastName  string     `gorm:"size:100"`
	Phone     string     `gorm:"size:30"`
	Gender    string     `gorm:"size:20"`
	BirthDate *time.Time `gorm:"type:date"`
	Address   string     `gorm:"size:255"`

	// IsActive flips to true once the activation token has been consumed.
	IsActive bool `gorm:"not null;default:false"`

	// ActivationToken is single-use and cleared on successful verification.
	ActivationToken *string `gorm:"size:64;index"`

	// ResetToken and ResetExpires are always set and cleared together.
	ResetToken   *string    `gorm:"size:64;index"`
	ResetExpires *time.Time

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}

// DisplayName returns the name shown in the session identity.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}
