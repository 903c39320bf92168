package model

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"doc-quiz/internal/retry"
)

// Endpoint names an external inference service.
type Endpoint string

const (
	EndpointSummarization      Endpoint = "summarization"
	EndpointQuestionGeneration Endpoint = "question-generation"
	EndpointQuestionAnswering  Endpoint = "question-answering"
)

// DefaultBackoff is the wait between retries after a rate-limit signal.
const DefaultBackoff = 2 * time.Second

// Transport performs a single request against an endpoint. Rate-limit signals
// must be reported as ErrRateLimited so the client can retry them.
type Transport interface {
	Send(ctx context.Context, endpoint Endpoint, payload any) (json.RawMessage, error)
}

// Invoker is the contract pipeline stages depend on.
type Invoker interface {
	Invoke(ctx context.Context, endpoint Endpoint, payload any, maxRetries int) (json.RawMessage, error)
}

// Client invokes endpoints through a Transport and owns the rate-limit retry
// policy. It holds no per-call state and is safe for concurrent use.
type Client struct {
	transport Transport
	backoff   time.Duration
	log       *slog.Logger
}

type Option func(*Client)

// WithBackoff overrides DefaultBackoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func NewClient(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		backoff:   DefaultBackoff,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke sends payload to endpoint. A rate-limited attempt is retried after the
// backoff while maxRetries allows it; every other failure is returned at once
// as a *RequestFailedError. The result is returned exactly as the endpoint sent it.
func (c *Client) Invoke(ctx context.Context, endpoint Endpoint, payload any, maxRetries int) (json.RawMessage, error) {
	log := c.log.With("endpoint", endpoint)

	var result json.RawMessage
	policy := retry.Policy{
		MaxRetries: maxRetries,
		Delay:      c.backoff,
		RetryIf: func(err error) bool {
			return errors.Is(err, ErrRateLimited)
		},
		OnRetry: func(attempt uint, err error) {
			// retry-go also calls this after the final attempt, when no retry follows.
			if int(attempt) >= maxRetries {
				return
			}
			log.Warn("rate limit reached", "attempt", attempt+1, "max_retries", maxRetries, "backoff", c.backoff)
		},
	}
	err := policy.Do(ctx, func() error {
		res, err := c.transport.Send(ctx, endpoint, payload)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, ErrRateLimited) {
		log.Error("rate limit retries exhausted", "max_retries", maxRetries)
		return nil, err
	}
	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		log.Error("model request failed", "status", reqErr.StatusCode, "err", err)
		return nil, err
	}
	log.Error("model request failed", "err", err)
	return nil, &RequestFailedError{Endpoint: endpoint, Err: err}
}
