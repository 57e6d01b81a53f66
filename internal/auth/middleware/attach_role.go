package auth

import (
	"context"
	"net/http"

	"github.com/mind-engage/examsim/internal/rbac"
	"github.com/mind-engage/examsim/internal/user"
	"github.com/pkg/errors"
)

type UserGetter interface {
	Get(ctx context.Context, id string) (user.User, error)
}

// AttachUser loads the caller from the store and makes the stored role
// authoritative over the token claim. Tokens for deleted users are rejected.
func AttachUser(users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			u, err := users.Get(ctx, SubjectFromContext(ctx))
			switch {
			case errors.Is(err, user.ErrNotFound):
				http.Error(w, "unknown user", http.StatusUnauthorized)
				return
			case err != nil:
				http.Error(w, "user lookup failed", http.StatusInternalServerError)
				return
			}
			ctx = rbac.WithRole(ctx, u.Role)
			ctx = WithUser(ctx, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
