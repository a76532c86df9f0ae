// Package usecase implements order placement for the checkout feature.
package usecase

import "errors"

var (
	// ErrUnauthorized is returned when no user is attached to the request.
	ErrUnauthorized = errors.New("user not authenticated")

	// ErrEmptyCart is returned when the cart holds no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidCart is returned for a cart line with a bad product id, quantity or price.
	ErrInvalidCart = errors.New("invalid cart line")

	// ErrInvalidShipping is returned when a shipping field is missing.
	ErrInvalidShipping = errors.New("invalid shipping information")

	// ErrUnknownProduct is returned under the reject policy when a cart line references no catalog product.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrTransactionFailed wraps any storage failure while the order is written.
	ErrTransactionFailed = errors.New("order transaction failed")
)
