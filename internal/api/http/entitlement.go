package http

import (
	"net/http"
	"time"

	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/mind-engage/examsim/internal/quota"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type entitlementResponse struct {
	entitlement.Snapshot
	Insights quota.Usage `json:"insights"`
}

func EntitlementHandler(q *quota.Service, now func() time.Time, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		t := now()
		snap := entitlement.Compute(u.EntitlementRecord(), t)
		usage, err := q.Peek(r.Context(), u.ID, snap, t)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, entitlementResponse{Snapshot: snap, Insights: usage})
	}
}

// InsightsClickHandler spends one daily insights click. Over the cap it
// answers 429 with the current usage.
func InsightsClickHandler(q *quota.Service, now func() time.Time, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFromContext(r.Context())
		t := now()
		snap := entitlement.Compute(u.EntitlementRecord(), t)
		usage, err := q.Consume(r.Context(), u.ID, snap, t)
		switch {
		case errors.Is(err, quota.ErrQuotaExceeded):
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": err.Error(), "insights": usage})
		case err != nil:
			writeError(w, log, err)
		default:
			writeJSON(w, http.StatusOK, map[string]any{"insights": usage})
		}
	}
}
