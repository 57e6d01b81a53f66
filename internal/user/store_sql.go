package user

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

const userCols = `id,username,password_hash,role,premium_locked,premium_expires_at,created_at`

func (s *SQLStore) Create(ctx context.Context, username, password, role string) (User, error) {
	username = strings.TrimSpace(username)
	if role == "" {
		role = RoleStudent
	}
	if !ValidRole(role) {
		return User{}, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(err, "hash password")
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id,username,password_hash,role,premium_expires_at,created_at)
		 VALUES ($1,$2,$3,$4,'',$5)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt.UnixMilli())
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, errors.Wrap(err, "insert user")
	}
	return u, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE username=$1`, strings.TrimSpace(username)))
}

func (s *SQLStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, errors.Wrap(rows.Err(), "list users")
}

func (s *SQLStore) SetPremium(ctx context.Context, id string, locked bool, expiresAt *time.Time) (User, error) {
	exp := ""
	if expiresAt != nil {
		exp = entitlement.Format(*expiresAt)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET premium_locked=$1, premium_expires_at=$2 WHERE id=$3`,
		locked, exp, id)
	if err != nil {
		return User{}, errors.Wrap(err, "set premium")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Authenticate returns the user when the password matches.
func Authenticate(ctx context.Context, s Store, username, password string) (User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scanOne(row *sql.Row) (User, error) {
	u, err := scanUser(row)
	if errors.Is(errors.Cause(err), sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func scanUser(sc scanner) (User, error) {
	var (
		u       User
		locked  sql.NullBool
		created int64
	)
	if err := sc.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &locked, &u.PremiumExpiresAt, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, errors.Wrap(err, "scan user")
	}
	if locked.Valid {
		b := locked.Bool
		u.Locked = &b
	}
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
