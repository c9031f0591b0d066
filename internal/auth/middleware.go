package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rentalhub/apiserver/internal/store"
	"github.com/rentalhub/apiserver/types"
)

const bearerPrefix = "Bearer "

// ErrIdentityNotFound signals a valid token whose subject no longer resolves
// to an account. Rejected the same way as an invalid token.
var ErrIdentityNotFound = errors.New("identity not found")

// UserDirectory resolves token subjects to accounts.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// RejectFunc converts an authentication failure into an HTTP response. The
// middleware never writes response bodies itself so error formatting stays
// with the rest of the API.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// Authenticator returns middleware that authenticates requests carrying a
// bearer token. Requests without one pass through anonymous; route policy
// decides whether that is acceptable (see RequireUser). A valid token has its
// subject resolved to a user, which is attached to the request context.
//
// Running the middleware on a context that already carries a user is a no-op,
// so double registration in a middleware chain is harmless.
func Authenticator(codec *TokenCodec, users UserDirectory, reject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := codec.Parse(strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				reject(w, r, err)
				return
			}

			user, err := users.GetByEmail(r.Context(), subject)
			if err != nil {
				// A token can outlive the account it names.
				if errors.Is(err, store.ErrNotFound) {
					err = ErrIdentityNotFound
				}
				reject(w, r, err)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that reached the handler without an
// authenticated user.
func RequireUser(reject RejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := UserFromContext(r.Context()); !ok {
				reject(w, r, ErrIdentityNotFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
