package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mind-engage/examsim/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := ParseCategory(" Exam ")
	require.NoError(t, err)
	assert.Equal(t, CategoryExam, c)
	_, err = ParseCategory("spam")
	assert.ErrorIs(t, err, ErrUnknownValue)

	d, err := ParseDeliveryStatus("failed")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, d)
	_, err = ParseDeliveryStatus("")
	assert.ErrorIs(t, err, ErrUnknownValue)

	tt, err := ParseTargetType("PREMIUM")
	require.NoError(t, err)
	assert.Equal(t, TargetPremium, tt)
	_, err = ParseTargetType("group")
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func ids(ns []Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestStore_Targeting(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	defer conn.Close()
	s := NewStore(conn)

	all, err := s.Create(ctx, Notification{Category: CategorySystem, TargetType: TargetAll, Title: "maintenance"})
	require.NoError(t, err)
	prem, err := s.Create(ctx, Notification{Category: CategoryPremium, TargetType: TargetPremium, Title: "new mock exam"})
	require.NoError(t, err)
	mine, err := s.Create(ctx, Notification{Category: CategoryExam, TargetType: TargetUser, TargetUserID: "u1", Title: "results ready"})
	require.NoError(t, err)

	_, err = s.Create(ctx, Notification{Category: CategoryExam, TargetType: TargetUser, Title: "nobody"})
	assert.ErrorIs(t, err, ErrMissingTarget)

	got, err := s.ListForUser(ctx, "u1", false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{all.ID, mine.ID}, ids(got))

	got, err = s.ListForUser(ctx, "u2", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{all.ID, prem.ID}, ids(got))

	require.NoError(t, s.MarkRead(ctx, mine.ID, "u1", false))
	require.NoError(t, s.MarkRead(ctx, mine.ID, "u1", false))
	assert.ErrorIs(t, s.MarkRead(ctx, mine.ID, "u2", true), ErrNotFound)
	assert.ErrorIs(t, s.MarkRead(ctx, "missing", "u1", false), ErrNotFound)

	// premium broadcasts are hidden from free users, so they cannot be read either
	assert.ErrorIs(t, s.MarkRead(ctx, prem.ID, "u1", false), ErrNotFound)
	require.NoError(t, s.MarkRead(ctx, prem.ID, "u2", true))
	require.NoError(t, s.MarkRead(ctx, all.ID, "u1", false))

	got, err = s.ListForUser(ctx, "u1", false)
	require.NoError(t, err)
	for _, n := range got {
		assert.Equal(t, StatusRead, n.Status, n.Title)
		assert.NotNil(t, n.ReadAt)
	}
	read := WithStatus(got, StatusRead)
	assert.ElementsMatch(t, []string{all.ID, mine.ID}, ids(read))
	assert.Empty(t, WithStatus(got, StatusSent))
	assert.Empty(t, WithStatus(got, StatusFailed))

	// u2 read nothing of its own; the premium read is recorded for u2 only
	got, err = s.ListForUser(ctx, "u2", true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{prem.ID}, ids(WithStatus(got, StatusRead)))
	assert.ElementsMatch(t, []string{all.ID}, ids(WithStatus(got, StatusSent)))
}
