package queue_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/devcrm/auth-service/internal/auth/queue"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *queue.Queue {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &queue.Queue{Redis: client, Name: queue.EmailQueue}
}

func TestEnqueueDequeue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	err := q.Enqueue(ctx, "sendVerificationEmail", map[string]string{
		"to":    "alice@example.com",
		"token": "tok-123",
	})
	require.NoError(t, err)

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Equal(t, "sendVerificationEmail", job.Name)
	require.NotEmpty(t, job.ID)
	require.Zero(t, job.Attempts)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	require.Equal(t, "alice@example.com", payload["to"])
}

func TestDequeueOrder(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "first", nil))
	require.NoError(t, q.Enqueue(ctx, "second", nil))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, "first", job.Name)

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, "second", job.Name)
}

func TestDequeueTimeout(t *testing.T) {
	q := newTestQueue(t)

	job, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.Nil(t, job)
}

func TestRequeueBumpsAttempts(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "flaky", nil))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	require.NoError(t, q.Requeue(ctx, job))

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, job.Attempts)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}
