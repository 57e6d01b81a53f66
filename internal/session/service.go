package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mind-engage/examsim/internal/activity"
	"github.com/mind-engage/examsim/internal/examtype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Service struct {
	store  Store
	events activity.Log
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewService(store Store, events activity.Log, log logrus.FieldLogger) *Service {
	if events == nil {
		events = activity.Discard{}
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Service{store: store, events: events, log: log, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start opens a session. Unknown exam types resolve to the default type.
func (s *Service) Start(ctx context.Context, userID, examType string) (View, error) {
	def := examtype.Resolve(examType)
	now := s.now().UTC()
	sess := Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExamType:   def.ID,
		Status:     StatusInProgress,
		StartedAt:  now,
		PausesUsed: []int{},
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return View{}, errors.Wrap(err, "create session")
	}
	s.record(ctx, activity.SessionStarted, sess, map[string]any{"exam_type": def.ID, "requested": examType})
	return NewView(sess, def, now), nil
}

// Get returns the caller's session, applying any pending expiry or auto-resume.
func (s *Service) Get(ctx context.Context, userID, id string) (View, error) {
	sess, def, now, err := s.load(ctx, userID, id)
	if err != nil {
		return View{}, err
	}
	return NewView(sess, def, now), nil
}

func (s *Service) Pause(ctx context.Context, userID, id string) (View, error) {
	return s.transition(ctx, userID, id, activity.SessionPaused, func(sess Session, def examtype.Definition, now time.Time) (Session, error) {
		cp, err := pauseCheckpoint(sess, def, now)
		if err != nil {
			return sess, err
		}
		sess.PausesUsed = append(append([]int{}, sess.PausesUsed...), cp)
		sess.PausedAt = &now
		sess.Status = StatusPaused
		return sess, nil
	})
}

func (s *Service) Resume(ctx context.Context, userID, id string) (View, error) {
	return s.transition(ctx, userID, id, activity.SessionResumed, func(sess Session, def examtype.Definition, now time.Time) (Session, error) {
		if sess.Status.Closed() {
			return sess, ErrClosed
		}
		if sess.Status != StatusPaused {
			return sess, ErrNotPaused
		}
		sess = closePause(sess, def, now)
		sess.Status = StatusInProgress
		return sess, nil
	})
}

func (s *Service) Submit(ctx context.Context, userID, id string) (View, error) {
	return s.transition(ctx, userID, id, activity.SessionSubmitted, func(sess Session, def examtype.Definition, now time.Time) (Session, error) {
		if sess.Status.Closed() {
			return sess, ErrClosed
		}
		sess = closePause(sess, def, now)
		sess.SubmittedAt = &now
		sess.Status = StatusSubmitted
		return sess, nil
	})
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]View, error) {
	list, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	now := s.now().UTC()
	out := make([]View, 0, len(list))
	for _, sess := range list {
		def := examtype.Resolve(sess.ExamType)
		settled, changed := Settle(sess, def, now)
		if changed {
			if saved, err := s.store.Update(ctx, settled); err == nil {
				settled = saved
			} else {
				s.log.WithError(err).WithField("session_id", sess.ID).Warn("settle session")
			}
		}
		out = append(out, NewView(settled, def, now))
	}
	return out, nil
}

type step func(sess Session, def examtype.Definition, now time.Time) (Session, error)

func (s *Service) transition(ctx context.Context, userID, id string, typ activity.Type, fn step) (View, error) {
	sess, def, now, err := s.load(ctx, userID, id)
	if err != nil {
		return View{}, err
	}
	next, err := fn(sess, def, now)
	if err != nil {
		return View{}, err
	}
	saved, err := s.store.Update(ctx, next)
	if err != nil {
		return View{}, err
	}
	s.record(ctx, typ, saved, map[string]any{"exam_type": saved.ExamType, "status": saved.Status})
	return NewView(saved, def, now), nil
}

func (s *Service) load(ctx context.Context, userID, id string) (Session, examtype.Definition, time.Time, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return Session{}, examtype.Definition{}, time.Time{}, err
	}
	if sess.UserID != userID {
		return Session{}, examtype.Definition{}, time.Time{}, ErrNotFound
	}
	def := examtype.Resolve(sess.ExamType)
	now := s.now().UTC()
	if settled, changed := Settle(sess, def, now); changed {
		sess, err = s.store.Update(ctx, settled)
		if err != nil {
			return Session{}, examtype.Definition{}, time.Time{}, err
		}
		s.log.WithFields(logrus.Fields{"session_id": sess.ID, "status": sess.Status}).Debug("session settled")
	}
	return sess, def, now, nil
}

func (s *Service) record(ctx context.Context, typ activity.Type, sess Session, data map[string]any) {
	data["user_id"] = sess.UserID
	err := s.events.Append(ctx, activity.Event{Type: typ, Key: sess.ID, Data: data, CreatedAt: s.now()})
	if err != nil {
		s.log.WithError(err).WithField("type", typ).Warn("activity append failed")
	}
}
