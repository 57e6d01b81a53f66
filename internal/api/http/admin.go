package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mind-engage/examsim/internal/activity"
	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/mind-engage/examsim/internal/stats"
	"github.com/mind-engage/examsim/internal/user"
	"github.com/sirupsen/logrus"
)

func StatsHandler(c *stats.Collector, now func() time.Time, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := c.Collect(r.Context(), now())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// POST /admin/users/{id}/premium  { "days": 30 } | { "lifetime": true } | { "lock": true }
func GrantPremiumHandler(users user.Store, events activity.Log, now func() time.Time, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req user.Grant
		if err := decode(r, &req); err != nil {
			writeError(w, log, err)
			return
		}
		t := now()
		id := chi.URLParam(r, "id")
		u, err := user.ApplyGrant(r.Context(), users, id, req, t)
		if err != nil {
			writeError(w, log, err)
			return
		}
		err = events.Append(r.Context(), activity.Event{
			Type:      activity.PremiumGranted,
			Key:       u.ID,
			Data:      map[string]any{"grant": req, "by": auth.SubjectFromContext(r.Context())},
			CreatedAt: t,
		})
		if err != nil {
			log.WithError(err).Warn("activity append failed")
		}
		log.WithFields(logrus.Fields{"user_id": u.ID, "days": req.Days, "lifetime": req.Lifetime, "lock": req.Lock}).
			Info("premium changed")
		writeJSON(w, http.StatusOK, map[string]any{
			"user":        u,
			"entitlement": entitlement.Compute(u.EntitlementRecord(), t),
		})
	}
}

type eventLister interface {
	Recent(ctx context.Context, limit int) ([]activity.Event, error)
}

// GET /admin/events?limit=50
func RecentEventsHandler(events eventLister, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit > 500 {
			limit = 500
		}
		list, err := events.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, log, err)
			return
		}
		if list == nil {
			list = []activity.Event{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
