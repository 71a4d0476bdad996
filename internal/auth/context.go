package auth

import (
	"context"

	"ecobrain/internal/core"
)

type contextKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFrom returns the authenticated user, if any.
func UserFrom(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(contextKey{}).(core.User)
	return u, ok
}

// UserIDFrom returns the authenticated user id, or 0.
func UserIDFrom(ctx context.Context) int64 {
	u, _ := UserFrom(ctx)
	return u.ID
}
