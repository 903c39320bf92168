package app

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-quiz/internal/config"
	"doc-quiz/internal/logger"
	"doc-quiz/internal/model"
	"doc-quiz/internal/pipeline"
	"doc-quiz/internal/queue"
)

func baseConfig() config.Config {
	return config.Config{
		LogLevel:                "info",
		ModelProvider:           "huggingface",
		HuggingFaceToken:        "hf_test",
		HuggingFaceBaseURL:      "http://127.0.0.1:1",
		ModelTimeout:            time.Second,
		SummaryChunkSize:        2000,
		QGChunkSize:             1500,
		SummaryMaxLength:        512,
		SummaryMinLength:        100,
		SummarizationMaxRetries: 3,
		RateLimitBackoff:        time.Millisecond,
		CacheProvider:           "none",
		CacheTTL:                time.Hour,
		PipelineMode:            "local",
	}
}

func runServer(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoSigs: true,
		NoLog:  true,
	})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(4 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func TestBuildLocalPipeline(t *testing.T) {
	deps, err := BuildWith(baseConfig(), logger.Discard(), false)
	require.NoError(t, err)
	defer deps.Close()

	require.NotNil(t, deps.Pipeline)
	assert.Same(t, deps.Pipeline, deps.Runner)
	assert.Nil(t, deps.Queue)
}

func TestBuildMissingCredential(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*config.Config)
	}{
		{"huggingface", func(c *config.Config) { c.HuggingFaceToken = "" }},
		{"openai", func(c *config.Config) { c.ModelProvider = "openai"; c.OpenAIKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mod(&cfg)
			_, err := BuildWith(cfg, logger.Discard(), false)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrMissingCredential)
		})
	}
}

func TestBuildOpenAI(t *testing.T) {
	cfg := baseConfig()
	cfg.ModelProvider = "openai"
	cfg.OpenAIKey = "sk-test"
	cfg.LLMModel = "gpt-4o-mini"

	deps, err := BuildWith(cfg, logger.Discard(), false)
	require.NoError(t, err)
	defer deps.Close()
	assert.NotNil(t, deps.Pipeline)
}

func TestBuildGatewayDispatchesToWorkers(t *testing.T) {
	cfg := baseConfig()
	cfg.PipelineMode = "nats"
	cfg.QueueURL = runServer(t)
	cfg.HuggingFaceToken = ""

	deps, err := BuildWith(cfg, logger.Discard(), false)
	require.NoError(t, err)
	defer deps.Close()

	assert.Nil(t, deps.Pipeline)
	require.NotNil(t, deps.Queue)
	assert.IsType(t, &queue.RemoteRunner{}, deps.Runner)
}

func TestBuildWorkerRunsLocally(t *testing.T) {
	cfg := baseConfig()
	cfg.PipelineMode = "nats"
	cfg.QueueURL = runServer(t)

	deps, err := BuildWith(cfg, logger.Discard(), true)
	require.NoError(t, err)
	defer deps.Close()

	require.NotNil(t, deps.Pipeline)
	require.NotNil(t, deps.Queue)
	assert.Same(t, deps.Pipeline, deps.Runner)
}

func TestBuildUnreachableQueue(t *testing.T) {
	cfg := baseConfig()
	cfg.PipelineMode = "nats"
	cfg.QueueURL = "nats://127.0.0.1:1"

	_, err := BuildWith(cfg, logger.Discard(), false)
	assert.Error(t, err)
}

func TestPipelineConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.QGMaxRetries = 2
	cfg.QAMaxRetries = 1
	cfg.AnswerConcurrency = 4

	got := PipelineConfig(cfg)
	assert.Equal(t, pipeline.SummarizerConfig{Budget: 2000, MaxLength: 512, MinLength: 100, MaxRetries: 3}, got.Summarization)
	assert.Equal(t, pipeline.QAConfig{Budget: 1500, QuestionRetries: 2, AnswerRetries: 1, AnswerConcurrency: 4}, got.QA)
}

func TestCacheScopeSeparatesBackends(t *testing.T) {
	hf := baseConfig()
	otherModel := baseConfig()
	otherModel.QAModel = "distilbert-base-cased-distilled-squad"
	oa := baseConfig()
	oa.ModelProvider = "openai"
	oa.LLMModel = "gpt-4o-mini"

	assert.NotEqual(t, cacheScope(hf), cacheScope(otherModel))
	assert.NotEqual(t, cacheScope(hf), cacheScope(oa))
}
