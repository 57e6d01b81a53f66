package jobs

import (
	"context"
	"time"

	"github.com/mind-engage/examsim/internal/stats"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Collector interface {
	Collect(ctx context.Context, now time.Time) (stats.Report, error)
}

type Pruner interface {
	Prune(now time.Time) int
}

type Config struct {
	StatsSpec string
	PruneSpec string
}

// Scheduler runs the periodic background work of the server.
type Scheduler struct {
	cron  *cron.Cron
	log   logrus.FieldLogger
	stats Collector
	quota Pruner
	now   func() time.Time
}

// New registers the jobs. A nil collector or pruner, or an empty spec,
// leaves that job out.
func New(cfg Config, collector Collector, pruner Pruner, log logrus.FieldLogger) (*Scheduler, error) {
	s := &Scheduler{
		cron:  cron.New(cron.WithLocation(time.UTC)),
		log:   log,
		stats: collector,
		quota: pruner,
		now:   time.Now,
	}
	if collector != nil && cfg.StatsSpec != "" {
		if _, err := s.cron.AddFunc(cfg.StatsSpec, s.snapshotStats); err != nil {
			return nil, errors.Wrapf(err, "stats schedule %q", cfg.StatsSpec)
		}
	}
	if pruner != nil && cfg.PruneSpec != "" {
		if _, err := s.cron.AddFunc(cfg.PruneSpec, s.pruneQuota); err != nil {
			return nil, errors.Wrapf(err, "prune schedule %q", cfg.PruneSpec)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs or for ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

func (s *Scheduler) snapshotStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r, err := s.stats.Collect(ctx, s.now())
	if err != nil {
		s.log.WithError(err).Error("stats snapshot")
		return
	}
	s.log.WithFields(logrus.Fields{
		"users":              r.UsersTotal,
		"premium_active":     r.PremiumActive,
		"premium_lifetime":   r.PremiumLifetime,
		"premium_expiring":   r.PremiumExpiring,
		"sessions_started":   r.SessionsStarted,
		"sessions_submitted": r.SessionsSubmitted,
		"insights_clicks":    r.InsightsClicks,
		"feedback":           r.FeedbackCount,
	}).Info("stats snapshot")
}

func (s *Scheduler) pruneQuota() {
	if n := s.quota.Prune(s.now()); n > 0 {
		s.log.WithField("keys", n).Debug("pruned quota counters")
	}
}
