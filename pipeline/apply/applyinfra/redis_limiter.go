package applyinfra

import (
	"context"
	"time"

	"github.com/applyflow/applyflow/pipeline/apply"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitKey = "applyflow:apply:ratelimit"

// allowScript trims, counts and reserves in one atomic step. Doing the count
// and the add in separate round trips would let concurrent workers all read
// count == max-1 and overshoot the cap.
//
// KEYS[1] window set; ARGV: window start (ms), max, now (ms), member, ttl (ms).
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisRateLimiter implements apply.RateLimiter with a rolling window over
// a Redis sorted set, shared by every worker in every process.
type RedisRateLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter allowing max job starts per window.
func NewRedisRateLimiter(client *redis.Client, max int, window time.Duration) apply.RateLimiter {
	return &RedisRateLimiter{client: client, max: max, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context) (bool, error) {
	now := time.Now()
	allowed, err := allowScript.Run(ctx, l.client,
		[]string{rateLimitKey},
		now.Add(-l.window).UnixMilli(),
		l.max,
		now.UnixMilli(),
		uuid.New().String(),
		(l.window * 2).Milliseconds(),
	).Int()
	if err != nil {
		return false, apply.ErrQueueFailed().WithDetail("error", err.Error())
	}
	return allowed == 1, nil
}
