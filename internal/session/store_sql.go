package session

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const sessionCols = `id,user_id,exam_type,status,started_at,paused_at,paused_seconds,pauses_used,submitted_at,version`

func (s *SQLStore) Create(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_sessions (`+sessionCols+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		sess.ID, sess.UserID, sess.ExamType, string(sess.Status), sess.StartedAt.UnixMilli(),
		nullMillis(sess.PausedAt), sess.PausedSeconds, joinInts(sess.PausesUsed),
		nullMillis(sess.SubmittedAt), sess.Version)
	return errors.Wrap(err, "insert session")
}

func (s *SQLStore) Get(ctx context.Context, id string) (Session, error) {
	sess, err := scanSession(s.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM exam_sessions WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

func (s *SQLStore) Update(ctx context.Context, sess Session) (Session, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_sessions
		 SET status=$1, paused_at=$2, paused_seconds=$3, pauses_used=$4, submitted_at=$5, version=version+1
		 WHERE id=$6 AND version=$7`,
		string(sess.Status), nullMillis(sess.PausedAt), sess.PausedSeconds,
		joinInts(sess.PausesUsed), nullMillis(sess.SubmittedAt), sess.ID, sess.Version)
	if err != nil {
		return Session{}, errors.Wrap(err, "update session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, sess.ID); err != nil {
			return Session{}, err
		}
		return Session{}, ErrConflict
	}
	sess.Version++
	return sess, nil
}

func (s *SQLStore) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionCols+` FROM exam_sessions WHERE user_id=$1 ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list sessions")
	}
	defer rows.Close()
	out := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, errors.Wrap(rows.Err(), "list sessions")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var (
		sess              Session
		status, used      string
		started           int64
		paused, submitted sql.NullInt64
	)
	err := sc.Scan(&sess.ID, &sess.UserID, &sess.ExamType, &status, &started,
		&paused, &sess.PausedSeconds, &used, &submitted, &sess.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, errors.Wrap(err, "scan session")
	}
	sess.Status = Status(status)
	sess.StartedAt = time.UnixMilli(started).UTC()
	sess.PausedAt = fromMillis(paused)
	sess.SubmittedAt = fromMillis(submitted)
	sess.PausesUsed = splitInts(used)
	return sess, nil
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	out := []int{}
	for _, p := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, n)
		}
	}
	return out
}
