package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv empties the environment for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	originalEnv := os.Environ()
	os.Clearenv()
	t.Cleanup(func() {
		os.Clearenv()
		for _, kv := range originalEnv {
			if k, v, ok := strings.Cut(kv, "="); ok {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 5000},
		{"LogLevel", cfg.LogLevel, "info"},
		{"ModelProvider", cfg.ModelProvider, "huggingface"},
		{"SummarizationModel", cfg.SummarizationModel, "facebook/bart-large-cnn"},
		{"QGModel", cfg.QGModel, "valhalla/t5-base-qg-hl"},
		{"QAModel", cfg.QAModel, "deepset/roberta-base-squad2"},
		{"SummaryChunkSize", cfg.SummaryChunkSize, 2000},
		{"QGChunkSize", cfg.QGChunkSize, 1500},
		{"SummaryMaxLength", cfg.SummaryMaxLength, 512},
		{"SummaryMinLength", cfg.SummaryMinLength, 100},
		{"SummarizationMaxRetries", cfg.SummarizationMaxRetries, 3},
		{"QGMaxRetries", cfg.QGMaxRetries, 0},
		{"QAMaxRetries", cfg.QAMaxRetries, 0},
		{"RateLimitBackoff", cfg.RateLimitBackoff, 2 * time.Second},
		{"CacheProvider", cfg.CacheProvider, "none"},
		{"PipelineMode", cfg.PipelineMode, "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MODEL_PROVIDER", "openai")
	t.Setenv("RATE_LIMIT_BACKOFF", "250ms")
	t.Setenv("ANSWER_CONCURRENCY", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "openai", cfg.ModelProvider)
	assert.Equal(t, 250*time.Millisecond, cfg.RateLimitBackoff)
	assert.Equal(t, 4, cfg.AnswerConcurrency)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown provider", map[string]string{"MODEL_PROVIDER": "stub"}},
		{"zero chunk size", map[string]string{"QG_CHUNK_SIZE": "0"}},
		{"negative retries", map[string]string{"SUMMARIZATION_MAX_RETRIES": "-1"}},
		{"min length above max length", map[string]string{"SUMMARY_MIN_LENGTH": "600"}},
		{"redis without address", map[string]string{"CACHE_PROVIDER": "redis"}},
		{"nats without url", map[string]string{"PIPELINE_MODE": "nats"}},
		{"malformed number", map[string]string{"PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadCrossFieldRequirementsSatisfied(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_PROVIDER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PIPELINE_MODE", "nats")
	t.Setenv("QUEUE_URL", "nats://localhost:4222")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.CacheProvider)
	assert.Equal(t, "nats", cfg.PipelineMode)
}
