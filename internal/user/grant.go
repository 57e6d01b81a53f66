package user

import (
	"context"
	"time"

	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/pkg/errors"
)

var ErrInvalidGrant = errors.New("exactly one of days (1..3650), lifetime or lock is required")

// MaxGrantDays bounds a single days grant.
const MaxGrantDays = 3650

// Grant changes a user's premium status. Days extend from the later of now
// and the current expiry; Lifetime clears the expiry; Lock blocks premium
// and keeps the stored expiry for reference.
type Grant struct {
	Days     int  `json:"days" validate:"gte=0,lte=3650"`
	Lifetime bool `json:"lifetime"`
	Lock     bool `json:"lock"`
}

func (g Grant) valid() bool {
	if g.Days < 0 || g.Days > MaxGrantDays {
		return false
	}
	n := 0
	if g.Days > 0 {
		n++
	}
	if g.Lifetime {
		n++
	}
	if g.Lock {
		n++
	}
	return n == 1
}

func ApplyGrant(ctx context.Context, s Store, id string, g Grant, now time.Time) (User, error) {
	if !g.valid() {
		return User{}, ErrInvalidGrant
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	switch {
	case g.Lifetime:
		return s.SetPremium(ctx, id, false, nil)
	case g.Lock:
		var keep *time.Time
		if t, ok := entitlement.ParseTimestamp(u.PremiumExpiresAt); ok {
			keep = &t
		}
		return s.SetPremium(ctx, id, true, keep)
	default:
		snap := entitlement.Compute(u.EntitlementRecord(), now)
		if snap.Lifetime {
			return u, nil
		}
		current := u.PremiumExpiresAt
		if !snap.IsPremium {
			current = ""
		}
		exp := entitlement.Extend(current, g.Days, now)
		return s.SetPremium(ctx, id, false, &exp)
	}
}
