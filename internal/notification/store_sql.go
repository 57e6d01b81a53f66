package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Create stores n and fills its id and creation time.
func (s *Store) Create(ctx context.Context, n Notification) (Notification, error) {
	if n.TargetType == TargetUser && n.TargetUserID == "" {
		return Notification{}, ErrMissingTarget
	}
	if n.TargetType != TargetUser {
		n.TargetUserID = ""
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	n.Status = StatusSent
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id,category,target_type,target_user_id,title,body,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, string(n.Category), string(n.TargetType), n.TargetUserID, n.Title, n.Body, n.CreatedAt.UnixMilli())
	if err != nil {
		return Notification{}, errors.Wrap(err, "insert notification")
	}
	return n, nil
}

// ListForUser returns what userID should see, newest first: notifications
// addressed to them, broadcasts, and premium broadcasts when isPremium.
func (s *Store) ListForUser(ctx context.Context, userID string, isPremium bool) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.category, n.target_type, n.target_user_id, n.title, n.body, n.created_at, r.read_at
		 FROM notifications n
		 LEFT JOIN notification_reads r ON r.notification_id = n.id AND r.user_id = $1
		 WHERE (n.target_type = 'user' AND n.target_user_id = $1)
		    OR n.target_type = 'all'
		    OR (n.target_type = 'premium' AND $2)
		 ORDER BY n.created_at DESC, n.id`,
		userID, isPremium)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var (
			n        Notification
			cat, tt  string
			created  int64
			readAtMs sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &cat, &tt, &n.TargetUserID, &n.Title, &n.Body, &created, &readAtMs); err != nil {
			return nil, errors.Wrap(err, "scan notification")
		}
		n.Category = Category(cat)
		n.TargetType = TargetType(tt)
		n.CreatedAt = time.UnixMilli(created).UTC()
		n.Status = StatusSent
		if readAtMs.Valid {
			t := time.UnixMilli(readAtMs.Int64).UTC()
			n.ReadAt = &t
			n.Status = StatusRead
		}
		out = append(out, n)
	}
	return out, errors.Wrap(rows.Err(), "list notifications")
}

// MarkRead records that userID read id. Marking twice keeps the first time.
// Notifications the caller cannot list are reported as not found.
func (s *Store) MarkRead(ctx context.Context, id, userID string, isPremium bool) error {
	var tt, target string
	err := s.db.QueryRowContext(ctx,
		`SELECT target_type, target_user_id FROM notifications WHERE id=$1`, id).Scan(&tt, &target)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "lookup notification")
	}
	switch TargetType(tt) {
	case TargetUser:
		if target != userID {
			return ErrNotFound
		}
	case TargetPremium:
		if !isPremium {
			return ErrNotFound
		}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notification_reads (notification_id, user_id, read_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (notification_id, user_id) DO NOTHING`,
		id, userID, time.Now().UnixMilli())
	return errors.Wrap(err, "mark read")
}
