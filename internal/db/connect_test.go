package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMemoryCreatesSchema(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, DriverSQLite, "file::memory:?cache=shared")
	require.NoError(t, err)
	defer conn.Close()

	for _, table := range []string{"users", "exam_sessions", "feedback", "notifications", "notification_reads", "event_log"} {
		var n int
		err := conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=$1`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}

	// idempotent
	require.NoError(t, ensureSchema(ctx, conn, DriverSQLite))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("oracle"), "")
	assert.ErrorContains(t, err, "unsupported driver")
}
