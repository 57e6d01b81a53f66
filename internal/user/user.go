package user

import (
	"context"
	"time"

	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/pkg/errors"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidRole   = errors.New("invalid role")
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// Locked is the premium block flag: false means premium is active,
	// true or nil means the user is not premium.
	Locked           *bool     `json:"premium_locked"`
	PremiumExpiresAt string    `json:"premium_expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// EntitlementRecord is the view the entitlement calculator works on.
func (u User) EntitlementRecord() *entitlement.Record {
	return &entitlement.Record{Locked: u.Locked, ExpiresAt: u.PremiumExpiresAt}
}

type Store interface {
	Create(ctx context.Context, username, password, role string) (User, error)
	Get(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
	// SetPremium stores the block flag and expiry; a nil expiresAt clears it,
	// which together with locked=false means lifetime.
	SetPremium(ctx context.Context, id string, locked bool, expiresAt *time.Time) (User, error)
}

func ValidRole(r string) bool { return r == RoleStudent || r == RoleAdmin }
