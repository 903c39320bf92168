package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"doc-quiz/internal/chunker"
	"doc-quiz/internal/model"
)

const DefaultQuestionBudget = 1500

// QAConfig controls chunking, retry budgets and answer fan-out for question
// generation.
type QAConfig struct {
	Budget          int
	QuestionRetries int
	AnswerRetries   int
	// AnswerConcurrency caps in-flight answer calls per chunk; zero means one
	// call per question with no cap.
	AnswerConcurrency int
}

// QAGenerator produces questions from text and answers them against the
// chunk they came from.
type QAGenerator struct {
	models model.Invoker
	cfg    QAConfig
	log    *slog.Logger
}

func NewQAGenerator(models model.Invoker, cfg QAConfig, log *slog.Logger) *QAGenerator {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultQuestionBudget
	}
	return &QAGenerator{models: models, cfg: cfg, log: log}
}

// Generate walks the chunks of text in order. Each chunk's questions are
// answered concurrently and joined before the next chunk starts. A failed
// answer becomes an unanswered pair; a failed question-generation call fails
// the whole call and discards everything produced so far.
func (g *QAGenerator) Generate(ctx context.Context, text string) ([]string, []QAPair, error) {
	chunks := chunker.Split(text, g.cfg.Budget)
	g.log.Debug("generating questions", "chunks", len(chunks))

	questions := []string{}
	answers := []QAPair{}
	for _, c := range chunks {
		qs, err := g.generateQuestions(ctx, c)
		if err != nil {
			return nil, nil, fmt.Errorf("generate questions for chunk %d: %w", c.Index, err)
		}
		questions = append(questions, qs...)
		answers = append(answers, g.answerAll(ctx, c, qs)...)
	}
	return questions, answers, nil
}

func (g *QAGenerator) generateQuestions(ctx context.Context, c chunker.Chunk) ([]string, error) {
	res, err := g.models.Invoke(ctx, model.EndpointQuestionGeneration, model.QuestionGenerationRequest{
		Inputs: model.QuestionGenerationPrefix + c.Text,
	}, g.cfg.QuestionRetries)
	if err != nil {
		return nil, err
	}

	var generated []model.GeneratedText
	if err := json.Unmarshal(res, &generated); err != nil {
		return nil, &model.RequestFailedError{Endpoint: model.EndpointQuestionGeneration, Detail: "malformed question-generation response", Err: err}
	}

	var questions []string
	for _, item := range generated {
		for _, q := range strings.Split(item.GeneratedText, model.QuestionSeparator) {
			if q = strings.TrimSpace(q); q != "" {
				questions = append(questions, q)
			}
		}
	}
	g.log.Debug("questions generated", "chunk", c.Index, "count", len(questions))
	return questions, nil
}

type indexedPair struct {
	index int
	pair  QAPair
}

// answerAll issues one answer call per question and reassembles the results
// in question order once all of them have finished.
func (g *QAGenerator) answerAll(ctx context.Context, c chunker.Chunk, questions []string) []QAPair {
	results := make(chan indexedPair, len(questions))

	var group errgroup.Group
	if g.cfg.AnswerConcurrency > 0 {
		group.SetLimit(g.cfg.AnswerConcurrency)
	}
	for i, q := range questions {
		group.Go(func() error {
			results <- indexedPair{index: i, pair: g.answer(ctx, c, q)}
			return nil
		})
	}
	_ = group.Wait()
	close(results)

	pairs := make([]QAPair, len(questions))
	for r := range results {
		pairs[r.index] = r.pair
	}
	return pairs
}

func (g *QAGenerator) answer(ctx context.Context, c chunker.Chunk, question string) QAPair {
	log := g.log.With("chunk", c.Index, "question", question)

	res, err := g.models.Invoke(ctx, model.EndpointQuestionAnswering, model.QuestionAnsweringRequest{
		Question: question,
		Context:  c.Text,
	}, g.cfg.AnswerRetries)
	if err != nil {
		log.Warn("answer unavailable", "err", err)
		return Unanswered(question)
	}

	var out model.QuestionAnsweringResponse
	if err := json.Unmarshal(res, &out); err != nil {
		log.Warn("answer unavailable", "err", "malformed question-answering response")
		return Unanswered(question)
	}
	answer := strings.TrimSpace(out.Answer)
	if answer == "" {
		return Unanswered(question)
	}
	return Answered(question, answer)
}
