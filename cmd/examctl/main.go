package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mind-engage/examsim/internal/activity"
	"github.com/mind-engage/examsim/internal/config"
	"github.com/mind-engage/examsim/internal/db"
	"github.com/mind-engage/examsim/internal/feedback"
	"github.com/mind-engage/examsim/internal/stats"
	"github.com/mind-engage/examsim/internal/user"
)

func main() {
	log := logrus.New()
	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Fatal("load .env")
	}
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("db open failed")
	}

	users := user.NewSQLStore(dbh)
	events := activity.NewEventRepo(dbh)
	cli := commandLine{
		users:  users,
		events: events,
		stats:  &stats.Collector{Users: users, Events: events, Feedback: feedback.NewStore(dbh)},
		out:    os.Stdout,
		now:    time.Now,
	}
	err = cli.run(os.Args)
	dbh.Close()
	if err != nil {
		if err != errHelp {
			log.Error(err)
		}
		os.Exit(1)
	}
}
