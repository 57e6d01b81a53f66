package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/session"
	"github.com/sirupsen/logrus"
)

// POST /sessions  { "exam_type": "pmp" }   unknown or empty types start the default
func StartSessionHandler(svc *session.Service, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamType string `json:"exam_type" validate:"max=64"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		v, err := svc.Start(r.Context(), auth.SubjectFromContext(r.Context()), req.ExamType)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func ListSessionsHandler(svc *session.Service, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListForUser(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetSessionHandler(svc *session.Service, log logrus.FieldLogger) http.HandlerFunc {
	return SessionActionHandler(svc.Get, log)
}

type sessionAction func(ctx context.Context, userID, id string) (session.View, error)

// SessionActionHandler runs one per-session operation for the caller.
func SessionActionHandler(action sessionAction, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := action(r.Context(), auth.SubjectFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
