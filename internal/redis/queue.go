package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// EmailQueueKey is the Redis list holding pending confirmation-email jobs.
const EmailQueueKey = "queue:booking_confirmation"

// JobQueue is a FIFO job queue backed by a Redis list. Producers LPUSH,
// consumers BRPOP, so the oldest job is delivered first.
type JobQueue struct {
	client *redis.Client
	key    string
}

// NewJobQueue creates a queue on the given list key.
func NewJobQueue(client *redis.Client, key string) *JobQueue {
	return &JobQueue{client: client, key: key}
}

// Push appends a job payload to the queue.
func (q *JobQueue) Push(ctx context.Context, payload []byte) error {
	return q.client.LPush(ctx, q.key, payload).Err()
}

// Pop blocks up to timeout for the next job. Returns nil, nil when the
// timeout elapses with an empty queue.
func (q *JobQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	// BRPOP replies with [key, value].
	if len(result) != 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

// Len returns the number of queued jobs.
func (q *JobQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
