package pipeline

import (
	"errors"
	"fmt"

	"doc-quiz/internal/model"
)

// ErrEmptyInput is returned before any model call when there is no text.
var ErrEmptyInput = errors.New("pipeline: no text to process")

// Stage names a pipeline phase with its own failure boundary.
type Stage string

const (
	StageSummarization      Stage = "summarization"
	StageQuestionGeneration Stage = "question-generation"
)

// StageError reports which stage failed and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Error kinds shared with remote callers.
const (
	KindInput         = "input"
	KindConfiguration = "configuration"
	KindRateLimited   = "rate_limited"
	KindRequestFailed = "request_failed"
	KindInternal      = "internal"
)

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	var reqErr *model.RequestFailedError
	switch {
	case errors.Is(err, ErrEmptyInput):
		return KindInput
	case errors.Is(err, model.ErrMissingCredential):
		return KindConfiguration
	case errors.Is(err, model.ErrRateLimited):
		return KindRateLimited
	case errors.As(err, &reqErr):
		return KindRequestFailed
	default:
		return KindInternal
	}
}

// Describe renders err as a short message safe to show to end users. Provider
// diagnostics carried by the underlying error are never included.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var cause string
	switch Kind(err) {
	case KindInput:
		return "no text was extracted from the document"
	case KindConfiguration:
		return "the model service is not configured"
	case KindRateLimited:
		cause = "the model service is rate limiting requests"
	case KindRequestFailed:
		cause = "the model service request failed"
	default:
		cause = "an internal error occurred"
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return fmt.Sprintf("%s failed: %s", stageErr.Stage, cause)
	}
	return cause
}
