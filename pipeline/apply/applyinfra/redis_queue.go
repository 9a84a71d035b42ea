package applyinfra

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/applyflow/applyflow/pipeline/apply"
	"github.com/applyflow/applyflow/pkg/kernel"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey   = "applyflow:apply:queue"
	delayedKey = "applyflow:apply:delayed"
)

// RedisQueue implements apply.JobQueue on a Redis list plus a sorted set
// for delayed delivery. The list carries job IDs only; the durable state
// lives in PostgreSQL, so a lost or duplicated queue entry is harmless.
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a Redis-backed job queue.
func NewRedisQueue(client *redis.Client) apply.JobQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) Push(ctx context.Context, id kernel.JobID) error {
	if err := q.client.LPush(ctx, queueKey, id.String()).Err(); err != nil {
		return apply.ErrQueueFailed().WithDetail("error", err.Error())
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (kernel.JobID, error) {
	result, err := q.client.BRPop(ctx, timeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return kernel.JobID(""), nil
		}
		return kernel.JobID(""), apply.ErrQueueFailed().WithDetail("error", err.Error())
	}
	// BRPOP returns [key, value].
	if len(result) < 2 {
		return kernel.JobID(""), nil
	}
	return kernel.NewJobID(result[1]), nil
}

func (q *RedisQueue) PushDelayed(ctx context.Context, id kernel.JobID, readyAt time.Time) error {
	member := redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: id.String(),
	}
	if err := q.client.ZAdd(ctx, delayedKey, member).Err(); err != nil {
		return apply.ErrQueueFailed().WithDetail("error", err.Error())
	}
	return nil
}

// MoveDue promotes every delayed job whose ready time has passed onto the
// main list. Promotion is not atomic across the two keys; a crash between
// LPUSH and ZREM redelivers the ID, which the claim CAS absorbs.
func (q *RedisQueue) MoveDue(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	due, err := q.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return 0, apply.ErrQueueFailed().WithDetail("error", err.Error())
	}
	if len(due) == 0 {
		return 0, nil
	}

	pipe := q.client.TxPipeline()
	for _, member := range due {
		pipe.LPush(ctx, queueKey, member)
		pipe.ZRem(ctx, delayedKey, member)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, apply.ErrQueueFailed().WithDetail("error", err.Error())
	}
	return len(due), nil
}
