package quota

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisCounter shares counters between server instances.
type RedisCounter struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisCounter(rdb redis.UniversalClient, prefix string) *RedisCounter {
	return &RedisCounter{rdb: rdb, prefix: prefix}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	k := r.prefix + key
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireAt(ctx, k, expireAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, "redis incr")
	}
	return incr.Val(), nil
}

func (r *RedisCounter) Decr(ctx context.Context, key string) error {
	return errors.Wrap(r.rdb.Decr(ctx, r.prefix+key).Err(), "redis decr")
}

func (r *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Get(ctx, r.prefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "redis get")
	}
	return n, nil
}
