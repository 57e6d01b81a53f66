package session

import (
	"time"

	"github.com/mind-engage/examsim/internal/examtype"
	"github.com/pkg/errors"
)

func policyOf(def examtype.Definition) examtype.PausePolicy {
	if def.PausePolicy == nil {
		return examtype.DisabledPausePolicy()
	}
	return *def.PausePolicy
}

func maxPause(def examtype.Definition) time.Duration {
	return time.Duration(policyOf(def).PauseDurationMinutes) * time.Minute
}

func examLength(def examtype.Definition) time.Duration {
	return time.Duration(def.DurationMinutes) * time.Minute
}

// pausedFor is the total paused time at now. An open pause counts up to the
// policy's pause duration and no further.
func pausedFor(s Session, def examtype.Definition, now time.Time) time.Duration {
	d := time.Duration(s.PausedSeconds) * time.Second
	if s.PausedAt != nil {
		open := now.Sub(*s.PausedAt)
		if open < 0 {
			open = 0
		}
		if m := maxPause(def); open > m {
			open = m
		}
		d += open
	}
	return d
}

// Elapsed is the active exam time, never more than the exam length.
func Elapsed(s Session, def examtype.Definition, now time.Time) time.Duration {
	end := now
	if s.SubmittedAt != nil {
		end = *s.SubmittedAt
	}
	e := end.Sub(s.StartedAt) - pausedFor(s, def, end)
	if e < 0 {
		return 0
	}
	if l := examLength(def); e > l {
		return l
	}
	return e
}

// Deadline moves forward by every minute spent paused.
func Deadline(s Session, def examtype.Definition, now time.Time) time.Time {
	return s.StartedAt.Add(examLength(def) + pausedFor(s, def, now))
}

func Remaining(s Session, def examtype.Definition, now time.Time) time.Duration {
	if s.Status.Closed() {
		return 0
	}
	r := Deadline(s, def, now).Sub(now)
	if r < 0 {
		return 0
	}
	return r
}

func lastUsed(s Session) int {
	last := -1
	for _, m := range s.PausesUsed {
		if m > last {
			last = m
		}
	}
	return last
}

// reachedCheckpoint is the latest checkpoint past the last used one that the
// candidate has already reached. Earlier ones are forfeited when it is used.
func reachedCheckpoint(s Session, def examtype.Definition, now time.Time) (int, bool) {
	pol := policyOf(def)
	if !pol.Allowed {
		return 0, false
	}
	el := Elapsed(s, def, now)
	last := lastUsed(s)
	cp, found := 0, false
	for _, m := range pol.CheckpointMinutes {
		if m <= last {
			continue
		}
		if time.Duration(m)*time.Minute <= el {
			cp, found = m, true
		}
	}
	return cp, found
}

// NextCheckpoint returns the first checkpoint still ahead of the candidate,
// or nil when none remains.
func NextCheckpoint(s Session, def examtype.Definition, now time.Time) *int {
	pol := policyOf(def)
	if !pol.Allowed || s.Status.Closed() {
		return nil
	}
	el := Elapsed(s, def, now)
	last := lastUsed(s)
	for _, m := range pol.CheckpointMinutes {
		if m > last && time.Duration(m)*time.Minute > el {
			v := m
			return &v
		}
	}
	return nil
}

func CanPause(s Session, def examtype.Definition, now time.Time) error {
	_, err := pauseCheckpoint(s, def, now)
	return err
}

func pauseCheckpoint(s Session, def examtype.Definition, now time.Time) (int, error) {
	switch s.Status {
	case StatusSubmitted, StatusExpired:
		return 0, ErrClosed
	case StatusPaused:
		return 0, errors.Wrap(ErrPauseNotAllowed, "already paused")
	}
	if !policyOf(def).Allowed {
		return 0, errors.Wrapf(ErrPauseNotAllowed, "exam type %s has no pauses", def.ID)
	}
	if Remaining(s, def, now) <= 0 {
		return 0, ErrClosed
	}
	cp, ok := reachedCheckpoint(s, def, now)
	if !ok {
		return 0, errors.Wrap(ErrPauseNotAllowed, "no checkpoint reached")
	}
	return cp, nil
}

// Settle applies the transitions time alone causes: a pause that ran its full
// length is resumed, and an in-progress session past its deadline expires.
func Settle(s Session, def examtype.Definition, now time.Time) (Session, bool) {
	changed := false
	if s.Status == StatusPaused && s.PausedAt != nil {
		if m := maxPause(def); now.Sub(*s.PausedAt) >= m {
			s.PausedSeconds += int64(m / time.Second)
			s.PausedAt = nil
			s.Status = StatusInProgress
			changed = true
		}
	}
	if s.Status == StatusInProgress && !now.Before(Deadline(s, def, now)) {
		s.Status = StatusExpired
		changed = true
	}
	return s, changed
}

// closePause folds an open pause into PausedSeconds.
func closePause(s Session, def examtype.Definition, now time.Time) Session {
	if s.PausedAt == nil {
		return s
	}
	s.PausedSeconds = int64(pausedFor(s, def, now) / time.Second)
	s.PausedAt = nil
	return s
}
