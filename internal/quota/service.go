package quota

import (
	"context"
	"time"

	"github.com/mind-engage/examsim/internal/activity"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrQuotaExceeded = errors.New("daily insights quota exceeded")

// Usage describes one user's insights clicks for the current UTC day.
// Limit and Remaining are nil when clicks are unlimited.
type Usage struct {
	Used      int64     `json:"used"`
	Limit     *int      `json:"limit"`
	Remaining *int      `json:"remaining"`
	ResetsAt  time.Time `json:"resets_at"`
}

type Service struct {
	counter Counter
	events  activity.Log
	log     logrus.FieldLogger
}

func NewService(counter Counter, events activity.Log, log logrus.FieldLogger) *Service {
	if events == nil {
		events = activity.Discard{}
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Service{counter: counter, events: events, log: log}
}

func dayKey(userID string, now time.Time) string {
	return "insights:" + userID + ":" + now.UTC().Format("20060102")
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

func usage(used int64, limit *int, now time.Time) Usage {
	u := Usage{Used: used, Limit: limit, ResetsAt: nextMidnight(now)}
	if limit != nil {
		r := *limit - int(used)
		if r < 0 {
			r = 0
		}
		u.Remaining = &r
	}
	return u
}

// Peek reports today's usage without consuming a click.
func (s *Service) Peek(ctx context.Context, userID string, snap entitlement.Snapshot, now time.Time) (Usage, error) {
	n, err := s.counter.Get(ctx, dayKey(userID, now))
	if err != nil {
		return Usage{}, err
	}
	return usage(n, snap.DailyClickQuota, now), nil
}

// Consume records one click. It fails with ErrQuotaExceeded once the day's
// cap from the snapshot is reached and leaves the counter unchanged.
func (s *Service) Consume(ctx context.Context, userID string, snap entitlement.Snapshot, now time.Time) (Usage, error) {
	limit := snap.DailyClickQuota
	key := dayKey(userID, now)

	if limit != nil && *limit <= 0 {
		n, err := s.counter.Get(ctx, key)
		if err != nil {
			return Usage{}, err
		}
		return usage(n, limit, now), ErrQuotaExceeded
	}

	n, err := s.counter.Incr(ctx, key, nextMidnight(now))
	if err != nil {
		return Usage{}, err
	}
	if limit != nil && n > int64(*limit) {
		if err := s.counter.Decr(ctx, key); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("quota rollback failed")
		}
		return usage(n-1, limit, now), ErrQuotaExceeded
	}

	err = s.events.Append(ctx, activity.Event{
		Type:      activity.InsightsClick,
		Key:       userID,
		Data:      map[string]any{"used": n},
		CreatedAt: now,
	})
	if err != nil {
		s.log.WithError(err).Warn("activity append failed")
	}
	return usage(n, limit, now), nil
}
