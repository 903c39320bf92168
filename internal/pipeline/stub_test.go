package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"doc-quiz/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubInvoker dispatches on the payload type to per-endpoint funcs. It is used
// where a test controls the timing of concurrent answer calls.
type stubInvoker struct {
	generate func(model.QuestionGenerationRequest) (json.RawMessage, error)
	answer   func(model.QuestionAnsweringRequest) (json.RawMessage, error)
}

func (s *stubInvoker) Invoke(_ context.Context, endpoint model.Endpoint, payload any, _ int) (json.RawMessage, error) {
	switch p := payload.(type) {
	case model.QuestionGenerationRequest:
		return s.generate(p)
	case model.QuestionAnsweringRequest:
		return s.answer(p)
	}
	return nil, fmt.Errorf("unexpected %s payload %T", endpoint, payload)
}

func summaryJSON(text string) json.RawMessage {
	return mustJSON([]model.SummaryOutput{{SummaryText: text}})
}

func questionsJSON(questions ...string) json.RawMessage {
	out := make([]model.GeneratedText, len(questions))
	for i, q := range questions {
		out[i] = model.GeneratedText{GeneratedText: q}
	}
	return mustJSON(out)
}

func answerJSON(answer string) json.RawMessage {
	return mustJSON(model.QuestionAnsweringResponse{Answer: answer, Score: 0.9})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
