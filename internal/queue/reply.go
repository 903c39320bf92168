package queue

import (
	"encoding/json"
	"errors"
	"fmt"

	"doc-quiz/internal/model"
	"doc-quiz/internal/pipeline"
)

// Reply is the envelope a worker sends back for every task.
type Reply struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ReplyError     `json:"error,omitempty"`
}

// ReplyError carries enough of a worker-side failure to rebuild an error the
// gateway can classify with errors.Is / errors.As.
type ReplyError struct {
	Stage   string `json:"stage,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewReplyError(err error) *ReplyError {
	re := &ReplyError{Kind: pipeline.Kind(err), Message: err.Error()}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		re.Stage = string(stageErr.Stage)
	}
	return re
}

// Err rebuilds the worker-side error.
func (e *ReplyError) Err() error {
	var err error
	switch e.Kind {
	case pipeline.KindInput:
		err = pipeline.ErrEmptyInput
	case pipeline.KindConfiguration:
		err = fmt.Errorf("worker: %w", model.ErrMissingCredential)
	case pipeline.KindRateLimited:
		err = fmt.Errorf("worker: %w", model.ErrRateLimited)
	case pipeline.KindRequestFailed:
		err = &model.RequestFailedError{Endpoint: stageEndpoint(e.Stage), Detail: e.Message}
	default:
		err = fmt.Errorf("worker: %s", e.Message)
	}
	if e.Stage != "" {
		return &pipeline.StageError{Stage: pipeline.Stage(e.Stage), Err: err}
	}
	return err
}

func stageEndpoint(stage string) model.Endpoint {
	if pipeline.Stage(stage) == pipeline.StageSummarization {
		return model.EndpointSummarization
	}
	return model.EndpointQuestionGeneration
}
