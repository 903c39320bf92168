package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"doc-quiz/internal/chunker"
	"doc-quiz/internal/model"
)

const (
	DefaultSummaryBudget    = 2000
	DefaultSummaryMaxLength = 512
	DefaultSummaryMinLength = 100
	DefaultSummarizeRetries = 3
)

// SummarizerConfig controls chunking and model parameters for summarization.
type SummarizerConfig struct {
	Budget     int
	MaxLength  int
	MinLength  int
	MaxRetries int
}

// Summarizer condenses raw document text chunk by chunk.
type Summarizer struct {
	models model.Invoker
	cfg    SummarizerConfig
	log    *slog.Logger
}

func NewSummarizer(models model.Invoker, cfg SummarizerConfig, log *slog.Logger) *Summarizer {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultSummaryBudget
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultSummaryMaxLength
	}
	if cfg.MinLength < 0 {
		cfg.MinLength = 0
	}
	return &Summarizer{models: models, cfg: cfg, log: log}
}

// Summarize summarizes each chunk in order, one call at a time, and joins the
// fragments with single spaces. The first failed chunk fails the whole call.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	chunks := chunker.Split(text, s.cfg.Budget)
	s.log.Debug("summarizing text", "chunks", len(chunks), "chars", len(text))

	fragments := make([]string, 0, len(chunks))
	for _, c := range chunks {
		res, err := s.models.Invoke(ctx, model.EndpointSummarization, model.SummarizationRequest{
			Inputs: c.Text,
			Parameters: model.SummarizationParameters{
				MaxLength: s.cfg.MaxLength,
				MinLength: s.cfg.MinLength,
				DoSample:  false,
			},
		}, s.cfg.MaxRetries)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d: %w", c.Index, err)
		}
		fragment, err := decodeSummary(res)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d: %w", c.Index, err)
		}
		if fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	return strings.Join(fragments, " "), nil
}

func decodeSummary(raw json.RawMessage) (string, error) {
	var out []model.SummaryOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &model.RequestFailedError{Endpoint: model.EndpointSummarization, Detail: "malformed summarization response", Err: err}
	}
	if len(out) == 0 {
		return "", &model.RequestFailedError{Endpoint: model.EndpointSummarization, Detail: "empty summarization response"}
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}
