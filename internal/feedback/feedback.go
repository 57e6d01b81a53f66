package feedback

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExamType  string    `json:"exam_type,omitempty"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Summary struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Create(ctx context.Context, f Feedback) (Feedback, error) {
	if f.Rating < 1 || f.Rating > 5 {
		return Feedback{}, ErrInvalidRating
	}
	f.ID = uuid.NewString()
	f.Message = strings.TrimSpace(f.Message)
	f.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (id,user_id,exam_type,rating,message,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		f.ID, f.UserID, f.ExamType, f.Rating, f.Message, f.CreatedAt.UnixMilli())
	if err != nil {
		return Feedback{}, errors.Wrap(err, "insert feedback")
	}
	return f, nil
}

// List returns the newest entries first.
func (s *Store) List(ctx context.Context, limit int) ([]Feedback, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,user_id,exam_type,rating,message,created_at
		 FROM feedback ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list feedback")
	}
	defer rows.Close()
	out := []Feedback{}
	for rows.Next() {
		var (
			f  Feedback
			at int64
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.ExamType, &f.Rating, &f.Message, &at); err != nil {
			return nil, errors.Wrap(err, "scan feedback")
		}
		f.CreatedAt = time.UnixMilli(at).UTC()
		out = append(out, f)
	}
	return out, errors.Wrap(rows.Err(), "list feedback")
}

func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var (
		sum Summary
		avg sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(rating) FROM feedback`).Scan(&sum.Count, &avg)
	if err != nil {
		return Summary{}, errors.Wrap(err, "feedback summary")
	}
	if avg.Valid {
		sum.AverageRating = avg.Float64
	}
	return sum, nil
}
