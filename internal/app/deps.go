package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"doc-quiz/internal/cache"
	"doc-quiz/internal/config"
	"doc-quiz/internal/logger"
	"doc-quiz/internal/model"
	"doc-quiz/internal/pipeline"
	"doc-quiz/internal/queue"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Cache  cache.Cache
	// Pipeline runs in-process. It is nil on a gateway that dispatches to
	// workers.
	Pipeline *pipeline.Pipeline
	// Runner is what request handlers call: the local pipeline or a remote
	// runner backed by Queue.
	Runner pipeline.Runner
	Queue  queue.Queue

	nc *nats.Conn
}

// Build loads config and shared components for service. When local is true
// the pipeline is always built in-process, regardless of PIPELINE_MODE.
func Build(service string, local bool) (Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, err
	}
	return BuildWith(cfg, logger.New(cfg.LogLevel, service), local)
}

// BuildWith assembles dependencies from an already loaded config.
func BuildWith(cfg config.Config, log *slog.Logger, local bool) (Deps, error) {
	deps := Deps{Config: cfg, Log: log}

	needQueue := cfg.PipelineMode == "nats"
	if local || !needQueue {
		c, err := buildCache(cfg, log)
		if err != nil {
			return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
		}
		transport, err := buildTransport(cfg, log)
		if err != nil {
			_ = c.Close()
			return Deps{}, fmt.Errorf("failed to initialize model backend: %w", err)
		}
		if cfg.CacheProvider != "none" {
			transport = model.NewCachedTransport(transport, c, cfg.CacheTTL, cacheScope(cfg), log)
		}
		client := model.NewClient(transport,
			model.WithBackoff(cfg.RateLimitBackoff),
			model.WithLogger(log),
		)
		deps.Cache = c
		deps.Pipeline = pipeline.New(client, PipelineConfig(cfg), log)
		deps.Runner = deps.Pipeline
	}

	if needQueue {
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			deps.Close()
			return Deps{}, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue", "url", cfg.QueueURL)
		deps.nc = nc
		deps.Queue = queue.NewNATS(log, nc)
		if !local {
			deps.Runner = queue.NewRemoteRunner(deps.Queue, log)
		}
	}
	return deps, nil
}

// Close drains the queue connection and releases the cache.
func (d Deps) Close() {
	if d.nc != nil {
		if err := d.nc.Drain(); err != nil {
			d.Log.Warn("failed to drain NATS connection", "err", err)
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Log.Warn("failed to close cache", "err", err)
		}
	}
}

// PipelineConfig maps service configuration onto the pipeline settings.
func PipelineConfig(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		Summarization: pipeline.SummarizerConfig{
			Budget:     cfg.SummaryChunkSize,
			MaxLength:  cfg.SummaryMaxLength,
			MinLength:  cfg.SummaryMinLength,
			MaxRetries: cfg.SummarizationMaxRetries,
		},
		QA: pipeline.QAConfig{
			Budget:            cfg.QGChunkSize,
			QuestionRetries:   cfg.QGMaxRetries,
			AnswerRetries:     cfg.QAMaxRetries,
			AnswerConcurrency: cfg.AnswerConcurrency,
		},
	}
}

func cacheScope(cfg config.Config) string {
	if cfg.ModelProvider == "openai" {
		return strings.Join([]string{cfg.ModelProvider, cfg.OpenAIBaseURL, cfg.LLMModel}, "|")
	}
	return strings.Join([]string{cfg.ModelProvider, cfg.SummarizationModel, cfg.QGModel, cfg.QAModel}, "|")
}

func buildTransport(cfg config.Config, log *slog.Logger) (model.Transport, error) {
	switch cfg.ModelProvider {
	case "huggingface":
		t, err := model.NewHuggingFaceTransport(model.HuggingFaceConfig{
			Token:   cfg.HuggingFaceToken,
			BaseURL: cfg.HuggingFaceBaseURL,
			Models: map[model.Endpoint]string{
				model.EndpointSummarization:      cfg.SummarizationModel,
				model.EndpointQuestionGeneration: cfg.QGModel,
				model.EndpointQuestionAnswering:  cfg.QAModel,
			},
			Timeout: cfg.ModelTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("HUGGINGFACE_TOKEN is required when MODEL_PROVIDER=huggingface: %w", err)
		}
		log.Info("using Hugging Face inference API", "base_url", cfg.HuggingFaceBaseURL)
		return t, nil
	case "openai":
		t, err := model.NewOpenAITransport(cfg.OpenAIKey, cfg.OpenAIBaseURL, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when MODEL_PROVIDER=openai: %w", err)
		}
		log.Info("using OpenAI chat completions", "model", cfg.LLMModel)
		return t, nil
	default:
		return nil, fmt.Errorf("invalid MODEL_PROVIDER: %s (valid options: huggingface, openai)", cfg.ModelProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "none", "":
		return cache.NewNoOpCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("using Redis response cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}
