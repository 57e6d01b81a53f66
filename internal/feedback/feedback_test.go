package feedback

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mind-engage/examsim/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	defer conn.Close()
	s := NewStore(conn)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Count)
	assert.Zero(t, sum.AverageRating)

	for _, r := range []int{0, 6} {
		_, err := s.Create(ctx, Feedback{UserID: "u1", Rating: r})
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	f, err := s.Create(ctx, Feedback{UserID: "u1", ExamType: "pmp", Rating: 4, Message: "  good pacing  "})
	require.NoError(t, err)
	assert.Equal(t, "good pacing", f.Message)
	_, err = s.Create(ctx, Feedback{UserID: "u2", Rating: 5})
	require.NoError(t, err)

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	sum, err = s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.InDelta(t, 4.5, sum.AverageRating, 1e-9)
}
