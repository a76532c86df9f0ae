// Package identity carries the authenticated user of a request through context.Context.
package identity

import "context"

// Identity is the user bound to the current session.
type Identity struct {
	UserID    uint
	Name      string
	Email     string
	SessionID string
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
