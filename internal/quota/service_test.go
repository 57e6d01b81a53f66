package quota

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mind-engage/examsim/internal/entitlement"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func snapshot(days int) entitlement.Snapshot {
	locked := false
	exp := entitlement.Format(now.Add(time.Duration(days) * 24 * time.Hour))
	return entitlement.Compute(&entitlement.Record{Locked: &locked, ExpiresAt: exp}, now)
}

func TestConsume_CapsAtTier(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryCounter(), nil, nil)
	snap := snapshot(15) // 5 clicks

	for i := 1; i <= 5; i++ {
		u, err := svc.Consume(ctx, "u1", snap, now)
		require.NoError(t, err)
		assert.Equal(t, int64(i), u.Used)
		assert.Equal(t, 5-i, *u.Remaining)
	}
	u, err := svc.Consume(ctx, "u1", snap, now)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, int64(5), u.Used)
	assert.Equal(t, 0, *u.Remaining)

	peek, err := svc.Peek(ctx, "u1", snap, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), peek.Used, "denied click is rolled back")
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), peek.ResetsAt)

	// next UTC day starts fresh
	tomorrow := now.Add(13 * time.Hour)
	u, err = svc.Consume(ctx, "u1", snapshot(15), tomorrow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.Used)

	// other users are independent
	_, err = svc.Consume(ctx, "u2", snap, now)
	require.NoError(t, err)
}

func TestConsume_NotPremiumAndLifetime(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryCounter(), nil, nil)

	none := entitlement.Compute(nil, now)
	_, err := svc.Consume(ctx, "u1", none, now)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	locked := false
	life := entitlement.Compute(&entitlement.Record{Locked: &locked}, now)
	for i := 0; i < 100; i++ {
		u, err := svc.Consume(ctx, "u2", life, now)
		require.NoError(t, err)
		assert.Nil(t, u.Limit)
		assert.Nil(t, u.Remaining)
	}
}

func TestConsume_DeniedReportsTodaysCount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryCounter(), nil, nil)

	for i := 0; i < 12; i++ {
		_, err := svc.Consume(ctx, "u1", snapshot(45), now) // 20 clicks
		require.NoError(t, err)
	}

	// premium ended during the day
	u, err := svc.Consume(ctx, "u1", entitlement.Compute(nil, now), now)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, int64(12), u.Used)
	assert.Equal(t, 0, *u.Remaining)

	// dropped to a smaller tier than what was already used
	u, err = svc.Consume(ctx, "u1", snapshot(15), now)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, int64(12), u.Used)

	peek, err := svc.Peek(ctx, "u1", snapshot(15), now)
	require.NoError(t, err)
	assert.Equal(t, int64(12), peek.Used)
}

func TestConsume_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryCounter(), nil, nil)
	snap := snapshot(45) // 20 clicks

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Consume(ctx, "u1", snap, now); err == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, allowed)
}

func TestMemoryCounter_Prune(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCounter()
	_, _ = m.Incr(ctx, "a", now)
	_, _ = m.Incr(ctx, "b", now.Add(time.Hour))

	assert.Equal(t, 1, m.Prune(now))
	assert.Equal(t, 1, m.Len())
	n, _ := m.Get(ctx, "b")
	assert.Equal(t, int64(1), n)
}

func TestRedisCounter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	c := NewRedisCounter(rdb, "examsim-test:"+uuid.NewString()+":")
	exp := time.Now().Add(time.Minute)

	n, err := c.Incr(ctx, "k", exp)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.Incr(ctx, "k", exp)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, c.Decr(ctx, "k"))
	n, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	ttl, err := rdb.TTL(ctx, c.prefix+"k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
