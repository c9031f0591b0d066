package auth

import (
	"context"

	"github.com/rentalhub/apiserver/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// ContextWithUser attaches the authenticated user to the request context.
func ContextWithUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}
