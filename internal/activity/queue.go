package activity

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop and TryPop when nothing is waiting.
var ErrQueueEmpty = errors.New("activity queue empty")

// Queue is the FIFO between the recorder and the persisting worker.
type Queue interface {
	Push(ctx context.Context, payload string) error
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	TryPop(ctx context.Context) (string, error)
}

// RedisQueue is a Redis list used as a queue (RPUSH / BLPOP).
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates a queue on the given list key.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Push(ctx context.Context, payload string) error {
	return q.rdb.RPush(ctx, q.key, payload).Err()
}

// Pop blocks up to timeout for the next payload.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	if len(result) < 2 {
		return "", ErrQueueEmpty
	}
	return result[1], nil
}

// TryPop returns the next payload without blocking.
func (q *RedisQueue) TryPop(ctx context.Context) (string, error) {
	v, err := q.rdb.LPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	return v, err
}

// Len reports how many entries are waiting.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
