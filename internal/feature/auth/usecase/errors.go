// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email, ID or token.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// Both cases collapse into this single error.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive is returned when the password is correct but the account was never activated.
	ErrAccountInactive = errors.New("account not activated")

	// ErrInvalidToken is returned for unknown, consumed or expired activation and reset tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrActivationEmailFailed is returned when the user row was committed but the activation email could not be sent.
	ErrActivationEmailFailed = errors.New("registered but activation email failed")

	// ErrResetEmailFailed is returned when a reset token was stored but the email could not be sent.
	ErrResetEmailFailed = errors.New("reset email failed")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")
)
