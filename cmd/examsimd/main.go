package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	api "github.com/mind-engage/examsim/internal/api/http"
	"github.com/mind-engage/examsim/internal/activity"
	auth "github.com/mind-engage/examsim/internal/auth/middleware"
	"github.com/mind-engage/examsim/internal/config"
	"github.com/mind-engage/examsim/internal/db"
	"github.com/mind-engage/examsim/internal/feedback"
	"github.com/mind-engage/examsim/internal/jobs"
	"github.com/mind-engage/examsim/internal/logging"
	"github.com/mind-engage/examsim/internal/notification"
	"github.com/mind-engage/examsim/internal/quota"
	"github.com/mind-engage/examsim/internal/session"
	"github.com/mind-engage/examsim/internal/stats"
	"github.com/mind-engage/examsim/internal/user"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logrus.WithError(err).Fatal("load .env")
	}
	cfg := config.FromEnv()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("db open failed")
	}
	defer dbh.Close()

	// --- Quota counters: Redis when configured, else in-process ---
	var (
		counter quota.Counter
		pruner  jobs.Pruner
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pctx).Err()
		pcancel()
		if err != nil {
			log.WithError(err).Fatal("redis ping failed")
		}
		defer rdb.Close()
		counter = quota.NewRedisCounter(rdb, "examsim:")
	} else {
		mc := quota.NewMemoryCounter()
		counter, pruner = mc, mc
	}

	// --- Services ---
	events := activity.NewEventRepo(dbh)
	users := user.NewSQLStore(dbh)
	fb := feedback.NewStore(dbh)
	collector := &stats.Collector{Users: users, Events: events, Feedback: fb}

	sched, err := jobs.New(jobs.Config{StatsSpec: cfg.StatsCron, PruneSpec: cfg.QuotaPruneCron}, collector, pruner, log)
	if err != nil {
		log.WithError(err).Fatal("scheduler")
	}
	sched.Start()

	handler := api.NewRouter(api.Deps{
		Auth:            auth.NewAuthService(cfg.AuthHMACSecret),
		Users:           users,
		Sessions:        session.NewService(session.NewSQLStore(dbh), events, log),
		Quota:           quota.NewService(counter, events, log),
		Notifications:   notification.NewStore(dbh),
		Feedback:        fb,
		Stats:           collector,
		Events:          events,
		Log:             log,
		EnableLocalAuth: cfg.EnableLocalAuth,
		CORSOrigins:     cfg.CORSOrigins(),
		Ready:           dbh.PingContext,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "mode": cfg.Mode, "db": cfg.DBDriver, "redis": cfg.RedisAddr != ""}).
			Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")

	sctx, scancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := sched.Stop(sctx); err != nil {
		log.WithError(err).Warn("scheduler shutdown")
	}
}
