package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doc-quiz/internal/model"
)

func TestRunEndToEnd(t *testing.T) {
	const text = "Paris is the capital of France. It is known for the Eiffel Tower."
	const summary = "Paris is the capital of France."
	const question = "What is the capital of France?"

	invoker := new(model.MockInvoker)
	invoker.On("Invoke", mock.Anything, model.EndpointSummarization, model.SummarizationRequest{
		Inputs:     text,
		Parameters: model.SummarizationParameters{MaxLength: 512, MinLength: 100},
	}, 3).Return(summaryJSON(summary), nil).Once()
	invoker.On("Invoke", mock.Anything, model.EndpointQuestionGeneration, model.QuestionGenerationRequest{
		Inputs: model.QuestionGenerationPrefix + summary,
	}, 0).Return(questionsJSON(question), nil).Once()
	invoker.On("Invoke", mock.Anything, model.EndpointQuestionAnswering, model.QuestionAnsweringRequest{
		Question: question,
		Context:  summary,
	}, 0).Return(answerJSON("Paris"), nil).Once()

	p := New(invoker, DefaultConfig(), discardLogger())
	result, err := p.Run(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, []string{question}, result.Questions)
	assert.Equal(t, []QAPair{Answered(question, "Paris")}, result.Answers)
	invoker.AssertExpectations(t)

	body, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"questions": ["What is the capital of France?"],
		"answers": [{"question": "What is the capital of France?", "answer": "Paris"}]
	}`, string(body))
}

func TestRunEmptyInputMakesNoCalls(t *testing.T) {
	for _, text := range []string{"", "  \n\t"} {
		invoker := new(model.MockInvoker)
		p := New(invoker, DefaultConfig(), discardLogger())

		_, err := p.Run(context.Background(), text)

		assert.ErrorIs(t, err, ErrEmptyInput)
		invoker.AssertNumberOfCalls(t, "Invoke", 0)
	}
}

func TestRunWrapsStageFailures(t *testing.T) {
	const text = "Some document text."

	tests := []struct {
		name      string
		setup     func(*model.MockInvoker)
		wantStage Stage
		wantKind  string
	}{
		{
			name: "summarization rate limited",
			setup: func(m *model.MockInvoker) {
				m.On("Invoke", mock.Anything, model.EndpointSummarization, mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("%w by summarization endpoint", model.ErrRateLimited)).Once()
			},
			wantStage: StageSummarization,
			wantKind:  KindRateLimited,
		},
		{
			name: "question generation failed",
			setup: func(m *model.MockInvoker) {
				m.On("Invoke", mock.Anything, model.EndpointSummarization, mock.Anything, mock.Anything).
					Return(summaryJSON(text), nil).Once()
				m.On("Invoke", mock.Anything, model.EndpointQuestionGeneration, mock.Anything, mock.Anything).
					Return(nil, &model.RequestFailedError{
						Endpoint:   model.EndpointQuestionGeneration,
						StatusCode: 500,
						Detail:     `{"error":"CUDA out of memory on node gpu-17"}`,
					}).Once()
			},
			wantStage: StageQuestionGeneration,
			wantKind:  KindRequestFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := new(model.MockInvoker)
			tt.setup(invoker)

			p := New(invoker, DefaultConfig(), discardLogger())
			result, err := p.Run(context.Background(), text)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.wantStage, stageErr.Stage)
			assert.Equal(t, tt.wantKind, Kind(err))
			assert.Empty(t, result.Questions)
			assert.Empty(t, result.Answers)
			invoker.AssertExpectations(t)
			invoker.AssertNotCalled(t, "Invoke", mock.Anything, model.EndpointQuestionAnswering, mock.Anything, mock.Anything)

			msg := Describe(err)
			assert.Contains(t, msg, string(tt.wantStage))
			assert.NotContains(t, msg, "CUDA")
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"empty input", ErrEmptyInput, "no text was extracted from the document"},
		{"configuration", model.ErrMissingCredential, "the model service is not configured"},
		{
			"wrapped request failure",
			&StageError{Stage: StageSummarization, Err: &model.RequestFailedError{Endpoint: model.EndpointSummarization, Detail: "secret"}},
			"summarization failed: the model service request failed",
		},
		{"unknown", errors.New("boom"), "an internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}
