package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"doc-quiz/internal/retry"
)

// TaskType enumerates supported task categories.
type TaskType string

const (
	TaskTypeGenerate TaskType = "generate"
)

// ErrNoWorkers means no worker was subscribed to receive the task.
var ErrNoWorkers = errors.New("queue: no workers available")

// Task represents a unit of work sent from the gateway to a worker.
type Task struct {
	ID        uuid.UUID
	Type      TaskType
	Payload   []byte
	CreatedAt time.Time
}

// Handler processes a task and returns the reply body.
type Handler func(context.Context, Task) (json.RawMessage, error)

// Queue exposes a minimal request/reply contract between gateway and workers.
type Queue interface {
	// Request sends task to one worker and waits for its reply. A failure
	// reported by the worker's handler is returned as an error.
	Request(ctx context.Context, task Task) (json.RawMessage, error)
	// Worker consumes tasks of taskType until ctx is done.
	Worker(ctx context.Context, taskType TaskType, handler Handler) error
}

// RequestWithRetry retries with exponential backoff while no worker is
// available. Any other failure, including a timeout, is returned as is since
// the worker may already be processing the task.
func RequestWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) (json.RawMessage, error) {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; ; attempt++ {
		reply, err := q.Request(ctx, task)
		if err == nil || !errors.Is(err, ErrNoWorkers) || attempt == attempts-1 {
			return reply, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
}
