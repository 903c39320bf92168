package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"doc-quiz/internal/pipeline"
)

// NewNATS constructs a thin NATS request/reply queue.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc}
}

type natsQueue struct {
	log *slog.Logger
	nc  *nats.Conn
}

func subject(taskType TaskType) string {
	return "tasks." + string(taskType)
}

func (q *natsQueue) Request(ctx context.Context, task Task) (json.RawMessage, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Type == "" {
		return nil, errors.New("task type required")
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	body, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}

	msg, err := q.nc.RequestWithContext(ctx, subject(task.Type), body)
	if errors.Is(err, nats.ErrNoResponders) {
		return nil, ErrNoWorkers
	}
	if err != nil {
		return nil, fmt.Errorf("request %s task %s: %w", task.Type, task.ID, err)
	}

	var reply Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode reply for task %s: %w", task.ID, err)
	}
	if reply.Error != nil {
		return nil, reply.Error.Err()
	}
	return reply.Result, nil
}

func (q *natsQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	subj := subject(taskType)
	group := "workers-" + string(taskType)
	sub, err := q.nc.QueueSubscribe(subj, group, func(msg *nats.Msg) {
		// Tasks run to completion even if the worker is asked to stop.
		go q.handleMessage(context.WithoutCancel(ctx), msg, handler)
	})
	if err != nil {
		return err
	}
	q.log.Info("worker subscribed", "subject", subj, "group", group)
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		q.log.Error("failed to decode task", "err", err)
		q.respond(msg, Reply{Error: &ReplyError{Kind: pipeline.KindInternal, Message: "malformed task"}})
		return
	}
	log := q.log.With("task_id", task.ID, "type", task.Type)

	start := time.Now()
	result, err := handler(ctx, task)
	if err != nil {
		log.Error("task failed", "err", err, "duration_ms", time.Since(start).Milliseconds())
		q.respond(msg, Reply{Error: NewReplyError(err)})
		return
	}
	log.Info("task completed", "duration_ms", time.Since(start).Milliseconds())
	q.respond(msg, Reply{Result: result})
}

func (q *natsQueue) respond(msg *nats.Msg, reply Reply) {
	body, err := json.Marshal(reply)
	if err != nil {
		q.log.Error("failed to encode reply", "err", err)
		return
	}
	if err := msg.Respond(body); err != nil {
		q.log.Error("failed to send reply", "err", err)
	}
}
