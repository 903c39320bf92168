package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doc-quiz/internal/pipeline"
)

const (
	dispatchAttempts = 3
	dispatchBackoff  = 200 * time.Millisecond
)

type generatePayload struct {
	Text string `json:"text"`
}

// RemoteRunner runs the pipeline on a worker reached through the queue.
type RemoteRunner struct {
	q   Queue
	log *slog.Logger
}

func NewRemoteRunner(q Queue, log *slog.Logger) *RemoteRunner {
	return &RemoteRunner{q: q, log: log}
}

func (r *RemoteRunner) Run(ctx context.Context, text string) (pipeline.Result, error) {
	if strings.TrimSpace(text) == "" {
		return pipeline.Result{}, pipeline.ErrEmptyInput
	}
	body, err := json.Marshal(generatePayload{Text: text})
	if err != nil {
		return pipeline.Result{}, err
	}

	r.log.Debug("dispatching pipeline task", "text_bytes", len(text))
	data, err := RequestWithRetry(ctx, r.q, Task{Type: TaskTypeGenerate, Payload: body}, dispatchAttempts, dispatchBackoff)
	if err != nil {
		return pipeline.Result{}, err
	}

	var result pipeline.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return pipeline.Result{}, fmt.Errorf("decode pipeline result: %w", err)
	}
	return result, nil
}

// GenerateHandler serves generate tasks with runner.
func GenerateHandler(runner pipeline.Runner) Handler {
	return func(ctx context.Context, task Task) (json.RawMessage, error) {
		var payload generatePayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode generate payload: %w", err)
		}
		result, err := runner.Run(ctx, payload.Text)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	}
}
