package notification

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Category string

const (
	CategorySystem  Category = "system"
	CategoryExam    Category = "exam"
	CategoryPremium Category = "premium"
	CategoryPromo   Category = "promo"
)

type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "pending"
	StatusSent    DeliveryStatus = "sent"
	StatusRead    DeliveryStatus = "read"
	StatusFailed  DeliveryStatus = "failed"
)

type TargetType string

const (
	TargetUser    TargetType = "user"
	TargetAll     TargetType = "all"
	TargetPremium TargetType = "premium"
)

var (
	ErrNotFound      = errors.New("notification not found")
	ErrUnknownValue  = errors.New("unknown value")
	ErrMissingTarget = errors.New("user target requires a user id")
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategorySystem, CategoryExam, CategoryPremium, CategoryPromo:
		return c, nil
	}
	return "", errors.Wrapf(ErrUnknownValue, "category %q", s)
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	switch d := DeliveryStatus(strings.ToLower(strings.TrimSpace(s))); d {
	case StatusPending, StatusSent, StatusRead, StatusFailed:
		return d, nil
	}
	return "", errors.Wrapf(ErrUnknownValue, "delivery status %q", s)
}

func ParseTargetType(s string) (TargetType, error) {
	switch t := TargetType(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetUser, TargetAll, TargetPremium:
		return t, nil
	}
	return "", errors.Wrapf(ErrUnknownValue, "target type %q", s)
}

type Notification struct {
	ID           string     `json:"id"`
	Category     Category   `json:"category"`
	TargetType   TargetType `json:"target_type"`
	TargetUserID string     `json:"target_user_id,omitempty"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	// Status is per recipient: sent until the caller marks it read.
	Status DeliveryStatus `json:"status"`
	ReadAt *time.Time     `json:"read_at,omitempty"`
}

// WithStatus keeps the notifications whose per-recipient status is st.
func WithStatus(ns []Notification, st DeliveryStatus) []Notification {
	out := make([]Notification, 0, len(ns))
	for _, n := range ns {
		if n.Status == st {
			out = append(out, n)
		}
	}
	return out
}
