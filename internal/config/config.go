package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration for the gateway and worker.
type Config struct {
	// Server
	Port             int           `env:"PORT" envDefault:"5000" validate:"min=1,max=65535"`
	WorkerHealthPort int           `env:"WORKER_HEALTH_PORT" envDefault:"5001" validate:"min=1,max=65535"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5m" validate:"gt=0"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760" validate:"gt=0"` // 10MB in bytes

	// Model backend
	ModelProvider      string        `env:"MODEL_PROVIDER" envDefault:"huggingface" validate:"oneof=huggingface openai"`
	HuggingFaceToken   string        `env:"HUGGINGFACE_TOKEN"`
	HuggingFaceBaseURL string        `env:"HF_BASE_URL" envDefault:"https://api-inference.huggingface.co/models" validate:"omitempty,url"`
	SummarizationModel string        `env:"SUMMARIZATION_MODEL" envDefault:"facebook/bart-large-cnn"`
	QGModel            string        `env:"QG_MODEL" envDefault:"valhalla/t5-base-qg-hl"`
	QAModel            string        `env:"QA_MODEL" envDefault:"deepset/roberta-base-squad2"`
	OpenAIKey          string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL" validate:"omitempty,url"`
	LLMModel           string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	ModelTimeout       time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s" validate:"gt=0"`

	// Pipeline
	SummaryChunkSize        int           `env:"SUMMARY_CHUNK_SIZE" envDefault:"2000" validate:"gt=0"`
	QGChunkSize             int           `env:"QG_CHUNK_SIZE" envDefault:"1500" validate:"gt=0"`
	SummaryMaxLength        int           `env:"SUMMARY_MAX_LENGTH" envDefault:"512" validate:"gt=0"`
	SummaryMinLength        int           `env:"SUMMARY_MIN_LENGTH" envDefault:"100" validate:"gte=0,ltefield=SummaryMaxLength"`
	SummarizationMaxRetries int           `env:"SUMMARIZATION_MAX_RETRIES" envDefault:"3" validate:"gte=0"`
	QGMaxRetries            int           `env:"QG_MAX_RETRIES" envDefault:"0" validate:"gte=0"`
	QAMaxRetries            int           `env:"QA_MAX_RETRIES" envDefault:"0" validate:"gte=0"`
	RateLimitBackoff        time.Duration `env:"RATE_LIMIT_BACKOFF" envDefault:"2s" validate:"gte=0"`
	AnswerConcurrency       int           `env:"ANSWER_CONCURRENCY" envDefault:"0" validate:"gte=0"`

	// Cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none" validate:"oneof=none redis"` // "none" or "redis"
	RedisAddr     string        `env:"REDIS_ADDR" validate:"required_if=CacheProvider redis"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h" validate:"gt=0"`

	// Pipeline execution
	PipelineMode string `env:"PIPELINE_MODE" envDefault:"local" validate:"oneof=local nats"` // "local" runs in-process, "nats" dispatches to workers
	QueueURL     string `env:"QUEUE_URL" validate:"required_if=PipelineMode nats"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads an optional .env file, then configuration from environment
// variables with defaults, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements. Credentials are
// checked when the model backend is built, not here.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
