package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"doc-quiz/internal/model"
)

// Runner turns extracted document text into question/answer pairs.
type Runner interface {
	Run(ctx context.Context, text string) (Result, error)
}

// Config bundles the settings of both stages.
type Config struct {
	Summarization SummarizerConfig
	QA            QAConfig
}

// DefaultConfig mirrors the budgets and retry counts the service ships with.
func DefaultConfig() Config {
	return Config{
		Summarization: SummarizerConfig{
			Budget:     DefaultSummaryBudget,
			MaxLength:  DefaultSummaryMaxLength,
			MinLength:  DefaultSummaryMinLength,
			MaxRetries: DefaultSummarizeRetries,
		},
		QA: QAConfig{
			Budget: DefaultQuestionBudget,
		},
	}
}

// Pipeline runs summarization followed by question generation. It keeps no
// state between runs.
type Pipeline struct {
	summarizer *Summarizer
	generator  *QAGenerator
	log        *slog.Logger
}

func New(models model.Invoker, cfg Config, log *slog.Logger) *Pipeline {
	return &Pipeline{
		summarizer: NewSummarizer(models, cfg.Summarization, log.With("stage", StageSummarization)),
		generator:  NewQAGenerator(models, cfg.QA, log.With("stage", StageQuestionGeneration)),
		log:        log,
	}
}

func (p *Pipeline) Run(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyInput
	}
	start := time.Now()

	summary, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		return Result{}, &StageError{Stage: StageSummarization, Err: err}
	}
	p.log.Info("text summarized", "input_chars", len(text), "summary_chars", len(summary))

	questions, answers, err := p.generator.Generate(ctx, summary)
	if err != nil {
		return Result{}, &StageError{Stage: StageQuestionGeneration, Err: err}
	}

	p.log.Info("pipeline finished",
		"questions", len(questions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Result{Questions: questions, Answers: answers}, nil
}
