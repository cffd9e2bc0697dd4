package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// EmailQueue is the list the auth service produces to and the mail worker
// consumes from.
const EmailQueue = "q:email"

// Job is a unit of background work. Payload is job-specific JSON.
type Job struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
}

// Queue is a Redis list-backed job queue. Producers LPUSH, consumers BRPOP,
// so jobs come out in enqueue order and a job is delivered to exactly one
// consumer.
type Queue struct {
	Redis redis.UniversalClient
	Name  string
}

// Enqueue serializes payload and pushes a new job onto the queue.
func (q *Queue) Enqueue(ctx context.Context, name string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	job := Job{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := q.Redis.LPush(ctx, q.Name, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job. Returns (nil, nil) when the
// timeout elapses with nothing to do.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	vals, err := q.Redis.BRPop(ctx, timeout, q.Name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// BRPOP returns [key, value].
	var job Job
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, fmt.Errorf("malformed job: %w", err)
	}
	return &job, nil
}

// Requeue pushes a failed job back with its attempt counter bumped.
func (q *Queue) Requeue(ctx context.Context, job *Job) error {
	job.Attempts++

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.Redis.LPush(ctx, q.Name, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Len reports the number of pending jobs.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.Redis.LLen(ctx, q.Name).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n, nil
}
