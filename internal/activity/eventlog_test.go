package activity

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mind-engage/examsim/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepo_AppendCount(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	defer conn.Close()
	repo := NewEventRepo(conn)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, Event{Type: InsightsClick, Key: "u1", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, repo.Append(ctx, Event{Type: InsightsClick, Key: "u1", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Append(ctx, Event{Type: SessionStarted, Key: "s1", Data: map[string]string{"exam_type": "pmp"}, CreatedAt: now}))

	n, err := repo.CountSince(ctx, InsightsClick, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.CountSince(ctx, SessionSubmitted, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)

	evs, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, SessionStarted, evs[0].Type)
	var data map[string]string
	require.NoError(t, json.Unmarshal(evs[0].Data.(json.RawMessage), &data))
	assert.Equal(t, "pmp", data["exam_type"])
}
