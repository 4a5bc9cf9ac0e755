package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type identityKey struct{}

// IdentityResolver resolves a bearer token to the caller's identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*repository.Identity, error)
}

// IdentityFromContext returns the request identity from context, if present.
func IdentityFromContext(ctx context.Context) (repository.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(repository.Identity)
	return id, ok
}

// WithIdentity returns a context carrying the identity, used by tests.
func WithIdentity(ctx context.Context, id repository.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// AuthMiddleware enforces bearer token authentication. The core never reads
// ambient auth state; the resolved identity travels explicitly from here into
// every service call.
func AuthMiddleware(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			id, err := resolver.ResolveIdentity(r.Context(), token)
			if err != nil || id == nil || id.UserID == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := WithIdentity(r.Context(), *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
