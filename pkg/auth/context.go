package auth

import (
	"context"

	"bookcrawl-backend/pkg/errors"
)

// UserContext carries the authenticated caller through the request context.
// The store treats UserID as an opaque actor string.
type UserContext struct {
	UserID string
	Email  string
	Groups []string
}

// IsAdmin reports whether the caller is in the admin group.
func (u *UserContext) IsAdmin() bool {
	for _, g := range u.Groups {
		if g == AdminGroup {
			return true
		}
	}
	return false
}

type contextKey string

const userContextKey contextKey = "auth.user"

// SetUserInContext attaches the user context to a request context.
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the user context set by the auth middleware.
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, errors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
