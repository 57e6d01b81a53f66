package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mind-engage/examsim/internal/db"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SQLStore {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite,
		"file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLStore(conn)
}

func TestSQLStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u, err := s.Create(ctx, " alice ", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, RoleStudent, u.Role)
	assert.NotEqual(t, "pw", u.PasswordHash)

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Nil(t, got.Locked)
	assert.Empty(t, got.PremiumExpiresAt)

	byName, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.Create(ctx, "alice", "other", RoleStudent)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = s.Create(ctx, "mallory", "pw", "root")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_SetPremium(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u, err := s.Create(ctx, "bob", "pw", RoleStudent)
	require.NoError(t, err)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// not premium before any grant
	snap := entitlement.Compute(u.EntitlementRecord(), now)
	assert.False(t, snap.IsPremium)

	exp := now.Add(45 * 24 * time.Hour)
	u, err = s.SetPremium(ctx, u.ID, false, &exp)
	require.NoError(t, err)
	require.NotNil(t, u.Locked)
	assert.False(t, *u.Locked)
	snap = entitlement.Compute(u.EntitlementRecord(), now)
	assert.True(t, snap.IsPremium)
	assert.Equal(t, 45, *snap.RemainingDays)
	assert.Equal(t, 20, *snap.DailyClickQuota)

	u, err = s.SetPremium(ctx, u.ID, false, nil)
	require.NoError(t, err)
	assert.True(t, entitlement.Compute(u.EntitlementRecord(), now).Lifetime)

	u, err = s.SetPremium(ctx, u.ID, true, nil)
	require.NoError(t, err)
	assert.False(t, entitlement.Compute(u.EntitlementRecord(), now).IsPremium)

	_, err = s.SetPremium(ctx, "missing", false, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Create(ctx, "carol", "s3cret", RoleAdmin)
	require.NoError(t, err)

	u, err := Authenticate(ctx, s, "carol", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)

	_, err = Authenticate(ctx, s, "carol", "wrong")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Authenticate(ctx, s, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_List(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, n := range []string{"zed", "amy"} {
		_, err := s.Create(ctx, n, "pw", RoleStudent)
		require.NoError(t, err)
	}
	us, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, us, 2)
	assert.Equal(t, "amy", us[0].Username)
}
