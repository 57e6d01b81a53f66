// Package entitlement derives a user's premium state and the daily insights
// quota from the stored lock flag and expiry. Nothing here reads the clock:
// callers pass now explicitly.
package entitlement

import (
	"math"
	"time"
)

const dayMillis = 86_400_000

// TimeLayout renders timestamps in UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is the slice of a persisted user the calculator needs.
type Record struct {
	// Locked is the premium block flag. Only an explicit false means premium.
	Locked *bool
	// ExpiresAt is the stored expiry as text; empty means none.
	ExpiresAt string
}

// Snapshot is derived per request and never stored.
type Snapshot struct {
	IsPremium       bool    `json:"is_premium"`
	Lifetime        bool    `json:"lifetime"`
	RemainingDays   *int    `json:"remaining_days"`
	ExpiresAt       *string `json:"expires_at"`
	ServerTime      string  `json:"server_time"`
	DailyClickQuota *int    `json:"daily_click_quota"`
}

// Compute derives the entitlement snapshot for rec at now. A nil rec is a
// non-premium user. Malformed expiry text yields a nil ExpiresAt with zero
// remaining days; it never grants lifetime access.
func Compute(rec *Record, now time.Time) Snapshot {
	snap := Snapshot{ServerTime: Format(now)}

	snap.IsPremium = rec != nil && rec.Locked != nil && !*rec.Locked
	if !snap.IsPremium {
		snap.RemainingDays = intPtr(0)
		snap.DailyClickQuota = MaxDailyClicks(snap.RemainingDays, false)
		return snap
	}

	if rec.ExpiresAt == "" {
		snap.Lifetime = true
		snap.DailyClickQuota = MaxDailyClicks(nil, true)
		return snap
	}

	exp, ok := ParseTimestamp(rec.ExpiresAt)
	if !ok {
		snap.RemainingDays = intPtr(0)
		snap.DailyClickQuota = MaxDailyClicks(snap.RemainingDays, false)
		return snap
	}
	s := Format(exp)
	snap.ExpiresAt = &s
	snap.RemainingDays = intPtr(RemainingDays(exp, now))
	snap.DailyClickQuota = MaxDailyClicks(snap.RemainingDays, false)
	return snap
}

// RemainingDays is ceil((exp-now)/1 day), clamped at zero.
func RemainingDays(exp, now time.Time) int {
	ms := exp.Sub(now).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int(math.Ceil(float64(ms) / dayMillis))
}

// Extend returns the expiry after granting days of premium on top of current.
// Time already remaining is kept; an expired, empty or unreadable current
// expiry starts from now.
func Extend(current string, days int, now time.Time) time.Time {
	base := now
	if exp, ok := ParseTimestamp(current); ok && exp.After(now) {
		base = exp
	}
	return base.UTC().AddDate(0, 0, days)
}

// Format renders t the way every API response does.
func Format(t time.Time) string { return t.UTC().Format(TimeLayout) }

func intPtr(v int) *int { return &v }
