package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/mind-engage/examsim/internal/notification"
	"github.com/mind-engage/examsim/internal/user"
	"github.com/sirupsen/logrus"
)

func premiumActive(u user.User, now time.Time) bool {
	snap := entitlement.Compute(u.EntitlementRecord(), now)
	return snap.IsPremium && (snap.Lifetime || (snap.RemainingDays != nil && *snap.RemainingDays > 0))
}

// GET /notifications?status=read|sent
// Premium broadcasts are included only for callers whose entitlement is
// premium right now.
func ListNotificationsHandler(store *notification.Store, now func() time.Time, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			status notification.DeliveryStatus
			err    error
		)
		if q := r.URL.Query().Get("status"); q != "" {
			if status, err = notification.ParseDeliveryStatus(q); err != nil {
				writeError(w, log, err)
				return
			}
		}
		u, _ := auth.UserFromContext(r.Context())
		list, err := store.ListForUser(r.Context(), u.ID, premiumActive(u, now()))
		if err != nil {
			writeError(w, log, err)
			return
		}
		if status != "" {
			list = notification.WithStatus(list, status)
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func MarkNotificationReadHandler(store *notification.Store, now func() time.Time, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		err := store.MarkRead(r.Context(), chi.URLParam(r, "id"), u.ID, premiumActive(u, now()))
		if err != nil {
			writeError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /admin/notifications
// { "category": "exam", "target_type": "user", "target_user_id": "...", "title": "...", "body": "..." }
func CreateNotificationHandler(store *notification.Store, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Category     string `json:"category" validate:"required"`
			TargetType   string `json:"target_type" validate:"required"`
			TargetUserID string `json:"target_user_id" validate:"required_if=TargetType user"`
			Title        string `json:"title" validate:"required,max=200"`
			Body         string `json:"body" validate:"max=5000"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		cat, err := notification.ParseCategory(req.Category)
		if err != nil {
			writeError(w, log, err)
			return
		}
		tt, err := notification.ParseTargetType(req.TargetType)
		if err != nil {
			writeError(w, log, err)
			return
		}
		n, err := store.Create(r.Context(), notification.Notification{
			Category:     cat,
			TargetType:   tt,
			TargetUserID: req.TargetUserID,
			Title:        req.Title,
			Body:         req.Body,
		})
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}
