package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type Type string

const (
	SessionStarted   Type = "SessionStarted"
	SessionPaused    Type = "SessionPaused"
	SessionResumed   Type = "SessionResumed"
	SessionSubmitted Type = "SessionSubmitted"
	InsightsClick    Type = "InsightsClick"
	PremiumGranted   Type = "PremiumGranted"
)

type Event struct {
	Seq       int64     `json:"seq"`
	Type      Type      `json:"type"`
	Key       string    `json:"key"` // natural key: session or user id
	Data      any       `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is what services record transitions into.
type Log interface {
	Append(ctx context.Context, e Event) error
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	data := []byte("{}")
	if e.Data != nil {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return errors.Wrap(err, "encode event")
		}
		data = b
	}
	at := e.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		string(e.Type), e.Key, string(data), at.UnixMilli())
	return errors.Wrap(err, "append event")
}

// CountSince counts events of one type at or after since.
func (r *EventRepo) CountSince(ctx context.Context, typ Type, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_log WHERE typ=$1 AND created_at >= $2`,
		string(typ), since.UnixMilli()).Scan(&n)
	return n, errors.Wrap(err, "count events")
}

// Recent returns the newest events first, raw payloads left as JSON.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, typ, key, data, created_at FROM event_log ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "recent events")
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var (
			e    Event
			typ  string
			data string
			at   int64
		)
		if err := rows.Scan(&e.Seq, &typ, &e.Key, &data, &at); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		e.Type = Type(typ)
		e.Data = json.RawMessage(data)
		e.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "recent events")
}

// Discard drops every event.
type Discard struct{}

func (Discard) Append(context.Context, Event) error { return nil }
