package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mind-engage/examsim/internal/activity"
	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/feedback"
	"github.com/mind-engage/examsim/internal/logging"
	"github.com/mind-engage/examsim/internal/notification"
	"github.com/mind-engage/examsim/internal/quota"
	"github.com/mind-engage/examsim/internal/rbac"
	"github.com/mind-engage/examsim/internal/session"
	"github.com/mind-engage/examsim/internal/stats"
	"github.com/mind-engage/examsim/internal/user"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Auth          *auth.AuthService
	Users         user.Store
	Sessions      *session.Service
	Quota         *quota.Service
	Notifications *notification.Store
	Feedback      *feedback.Store
	Stats         *stats.Collector
	Events        activity.Log
	Log           logrus.FieldLogger

	EnableLocalAuth bool
	CORSOrigins     []string
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Events == nil {
		d.Events = activity.Discard{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, logging.RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.EnableLocalAuth {
		r.Post("/auth/login", LoginHandler(d.Auth, d.Users, d.Log))
	}

	// JWT → stored user and role in context → RBAC
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth), auth.AttachUser(d.Users))

		pr.With(rbac.Require("exam:view")).Get("/exam-types", ListExamTypesHandler())
		pr.With(rbac.Require("exam:view")).Get("/exam-types/{id}", GetExamTypeHandler())
		pr.With(rbac.Require("exam:view")).Get("/exam-types/{id}/pause-policy", PausePolicyHandler())

		pr.With(rbac.Require("entitlement:view")).Get("/me/entitlement", EntitlementHandler(d.Quota, d.Now, d.Log))
		pr.With(rbac.Require("insights:click")).Post("/insights/click", InsightsClickHandler(d.Quota, d.Now, d.Log))

		pr.Route("/sessions", func(sr chi.Router) {
			sr.With(rbac.Require("session:start")).Post("/", StartSessionHandler(d.Sessions, d.Log))
			sr.With(rbac.Require("session:view")).Get("/", ListSessionsHandler(d.Sessions, d.Log))
			sr.With(rbac.Require("session:view")).Get("/{id}", GetSessionHandler(d.Sessions, d.Log))
			sr.With(rbac.Require("session:pause")).Post("/{id}/pause", SessionActionHandler(d.Sessions.Pause, d.Log))
			sr.With(rbac.Require("session:resume")).Post("/{id}/resume", SessionActionHandler(d.Sessions.Resume, d.Log))
			sr.With(rbac.Require("session:submit")).Post("/{id}/submit", SessionActionHandler(d.Sessions.Submit, d.Log))
		})

		pr.With(rbac.Require("feedback:create")).Post("/feedback", CreateFeedbackHandler(d.Feedback, d.Log))

		pr.With(rbac.Require("notification:view")).Get("/notifications", ListNotificationsHandler(d.Notifications, d.Now, d.Log))
		pr.With(rbac.Require("notification:view")).Post("/notifications/{id}/read", MarkNotificationReadHandler(d.Notifications, d.Now, d.Log))

		pr.Route("/admin", func(ar chi.Router) {
			ar.With(rbac.Require("admin:notifications")).Post("/notifications", CreateNotificationHandler(d.Notifications, d.Log))
			ar.With(rbac.Require("admin:stats")).Get("/stats", StatsHandler(d.Stats, d.Now, d.Log))
			ar.With(rbac.Require("admin:feedback")).Get("/feedback", ListFeedbackHandler(d.Feedback, d.Log))
			ar.With(rbac.Require("admin:premium")).Post("/users/{id}/premium", GrantPremiumHandler(d.Users, d.Events, d.Now, d.Log))
			if el, ok := d.Events.(eventLister); ok {
				ar.With(rbac.Require("admin:events")).Get("/events", RecentEventsHandler(el, d.Log))
			}
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}
