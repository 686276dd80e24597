package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow prunes, counts and records in one step so concurrent callers
// cannot all pass on the same count. Scores are unix milliseconds.
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// RedisLimiter is a sliding window shared by every instance, kept as one
// sorted set of request timestamps per key.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	ok, err := slidingWindow.Run(ctx, r.client, []string{"ratelimit:" + key},
		now.Add(-r.window).UnixMilli(), // hits at or before the cutoff expire
		now.UnixMilli(),
		r.limit,
		r.window.Milliseconds(),
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, err
	}
	return ok == 1, nil
}
