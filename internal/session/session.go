package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusSubmitted  Status = "submitted"
	StatusExpired    Status = "expired"
)

func (s Status) Closed() bool { return s == StatusSubmitted || s == StatusExpired }

var (
	ErrNotFound        = errors.New("session not found")
	ErrPauseNotAllowed = errors.New("pause not allowed")
	ErrNotPaused       = errors.New("session is not paused")
	ErrClosed          = errors.New("session is closed")
	ErrConflict        = errors.New("session was modified concurrently")
)

// Session is one timed run of an exam type. PausesUsed lists the checkpoint
// minutes already spent, in the order they were used.
type Session struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	ExamType      string     `json:"exam_type"`
	Status        Status     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	PausedAt      *time.Time `json:"paused_at,omitempty"`
	PausedSeconds int64      `json:"paused_seconds"`
	PausesUsed    []int      `json:"pauses_used"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	Version       int64      `json:"-"`
}

type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// Update writes s if the stored version still equals s.Version and bumps it.
	Update(ctx context.Context, s Session) (Session, error)
	ListForUser(ctx context.Context, userID string) ([]Session, error)
}
