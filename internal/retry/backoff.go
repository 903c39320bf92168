package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	return base * (1 << attempt)
}

// Policy retries an operation a bounded number of times with a fixed delay
// between attempts. Only errors accepted by RetryIf are retried; anything else
// is returned immediately.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt. Negative
	// values are treated as zero.
	MaxRetries int
	Delay      time.Duration
	RetryIf    func(error) bool
	// OnRetry is called after each failed attempt that is eligible for retry.
	OnRetry func(attempt uint, err error)
}

// Do runs fn until it succeeds, returns a non-retryable error, or the retry
// budget is spent. The returned error is the one from the last attempt.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(retries) + 1),
		retry.Delay(p.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
	if p.RetryIf != nil {
		opts = append(opts, retry.RetryIf(p.RetryIf))
	}
	if p.OnRetry != nil {
		opts = append(opts, retry.OnRetry(p.OnRetry))
	}
	return retry.Do(fn, opts...)
}
