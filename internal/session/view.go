package session

import (
	"time"

	"github.com/mind-engage/examsim/internal/examtype"
)

type View struct {
	Session
	Title                 string    `json:"title"`
	QuestionCount         int       `json:"question_count"`
	DurationMinutes       int       `json:"duration_minutes"`
	Deadline              time.Time `json:"deadline"`
	ElapsedSeconds        int64     `json:"elapsed_seconds"`
	RemainingSeconds      int64     `json:"remaining_seconds"`
	CanPause              bool      `json:"can_pause"`
	NextCheckpointMinutes *int      `json:"next_checkpoint_minutes"`
	// PauseEndsAt is when an open pause auto-resumes.
	PauseEndsAt *time.Time `json:"pause_ends_at,omitempty"`
}

func NewView(s Session, def examtype.Definition, now time.Time) View {
	v := View{
		Session:               s,
		Title:                 def.Title,
		QuestionCount:         def.QuestionCount,
		DurationMinutes:       def.DurationMinutes,
		Deadline:              Deadline(s, def, now),
		ElapsedSeconds:        int64(Elapsed(s, def, now) / time.Second),
		RemainingSeconds:      int64(Remaining(s, def, now) / time.Second),
		CanPause:              CanPause(s, def, now) == nil,
		NextCheckpointMinutes: NextCheckpoint(s, def, now),
	}
	if v.PausesUsed == nil {
		v.PausesUsed = []int{}
	}
	if s.PausedAt != nil {
		end := s.PausedAt.Add(maxPause(def))
		v.PauseEndsAt = &end
	}
	return v
}
