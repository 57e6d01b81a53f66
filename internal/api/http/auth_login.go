package http

import (
	"net/http"

	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/user"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// POST /auth/login  { "username": "...", "password": "..." }
func LoginHandler(a *auth.AuthService, users user.Store, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username" validate:"required,max=128"`
			Password string `json:"password" validate:"required,max=256"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		u, err := user.Authenticate(r.Context(), users, req.Username, req.Password)
		if errors.Is(err, user.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
			return
		}
		if err != nil {
			writeError(w, log, err)
			return
		}
		tok, exp, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			writeError(w, log, errors.Wrap(err, "issue token"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": tok,
			"token_type":   "Bearer",
			"expires_at":   exp.UTC(),
			"role":         u.Role,
		})
	}
}
