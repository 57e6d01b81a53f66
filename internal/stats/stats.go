package stats

import (
	"context"
	"time"

	"github.com/mind-engage/examsim/internal/activity"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/mind-engage/examsim/internal/feedback"
	"github.com/mind-engage/examsim/internal/user"
	"github.com/pkg/errors"
)

const expiringWindowDays = 7

type Report struct {
	GeneratedAt       time.Time `json:"generated_at"`
	UsersTotal        int       `json:"users_total"`
	PremiumActive     int       `json:"premium_active"`
	PremiumLifetime   int       `json:"premium_lifetime"`
	PremiumExpiring   int       `json:"premium_expiring_7d"`
	SessionsStarted   int       `json:"sessions_started_24h"`
	SessionsSubmitted int       `json:"sessions_submitted_24h"`
	InsightsClicks    int       `json:"insights_clicks_24h"`
	FeedbackCount     int       `json:"feedback_count"`
	AverageRating     float64   `json:"average_rating"`
}

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type EventCounter interface {
	CountSince(ctx context.Context, typ activity.Type, since time.Time) (int, error)
}

type FeedbackSummarizer interface {
	Summary(ctx context.Context) (feedback.Summary, error)
}

type Collector struct {
	Users    UserLister
	Events   EventCounter
	Feedback FeedbackSummarizer
}

func (c *Collector) Collect(ctx context.Context, now time.Time) (Report, error) {
	r := Report{GeneratedAt: now.UTC()}

	users, err := c.Users.List(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "stats: users")
	}
	r.UsersTotal = len(users)
	for _, u := range users {
		snap := entitlement.Compute(u.EntitlementRecord(), now)
		if !snap.IsPremium {
			continue
		}
		switch {
		case snap.Lifetime:
			r.PremiumActive++
			r.PremiumLifetime++
		case snap.RemainingDays != nil && *snap.RemainingDays > 0:
			r.PremiumActive++
			if *snap.RemainingDays <= expiringWindowDays {
				r.PremiumExpiring++
			}
		}
	}

	since := now.Add(-24 * time.Hour)
	for typ, dst := range map[activity.Type]*int{
		activity.SessionStarted:   &r.SessionsStarted,
		activity.SessionSubmitted: &r.SessionsSubmitted,
		activity.InsightsClick:    &r.InsightsClicks,
	} {
		n, err := c.Events.CountSince(ctx, typ, since)
		if err != nil {
			return Report{}, errors.Wrapf(err, "stats: %s", typ)
		}
		*dst = n
	}

	sum, err := c.Feedback.Summary(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "stats: feedback")
	}
	r.FeedbackCount = sum.Count
	r.AverageRating = sum.AverageRating
	return r, nil
}
