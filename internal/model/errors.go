package model

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited reports that an endpoint asked the caller to slow down.
	// Transports return it for each rate-limit signal; Client returns it once
	// the retry budget is spent.
	ErrRateLimited = errors.New("model: rate limited")

	// ErrMissingCredential is a configuration error: no bearer credential was
	// supplied for the model endpoints.
	ErrMissingCredential = errors.New("model: missing api credential")
)

// RequestFailedError is a non-retryable failure reported by an endpoint or the
// transport underneath it. Detail may contain provider diagnostics and is meant
// for logs, not for end users.
type RequestFailedError struct {
	Endpoint   Endpoint
	StatusCode int
	Detail     string
	Err        error
}

func (e *RequestFailedError) Error() string {
	msg := fmt.Sprintf("model %s request failed", e.Endpoint)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	switch {
	case e.Detail != "":
		msg += ": " + e.Detail
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func rateLimited(endpoint Endpoint) error {
	return fmt.Errorf("%w by %s endpoint", ErrRateLimited, endpoint)
}
