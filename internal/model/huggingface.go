package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co/models"

	DefaultSummarizationModel      = "facebook/bart-large-cnn"
	DefaultQuestionGenerationModel = "valhalla/t5-base-qg-hl"
	DefaultQuestionAnsweringModel  = "deepset/roberta-base-squad2"

	defaultRequestTimeout = 60 * time.Second
	maxErrorDetail        = 512
)

// HuggingFaceConfig configures the hosted inference API transport.
type HuggingFaceConfig struct {
	Token   string
	BaseURL string
	// Models maps each endpoint to a model id; missing entries use the defaults.
	Models  map[Endpoint]string
	Timeout time.Duration
}

// HuggingFaceTransport posts JSON payloads to the Hugging Face inference API.
type HuggingFaceTransport struct {
	baseURL string
	models  map[Endpoint]string
	client  *http.Client
}

func NewHuggingFaceTransport(cfg HuggingFaceConfig) (*HuggingFaceTransport, error) {
	if cfg.Token == "" {
		return nil, ErrMissingCredential
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHuggingFaceBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	models := map[Endpoint]string{
		EndpointSummarization:      DefaultSummarizationModel,
		EndpointQuestionGeneration: DefaultQuestionGenerationModel,
		EndpointQuestionAnswering:  DefaultQuestionAnsweringModel,
	}
	for endpoint, id := range cfg.Models {
		if id != "" {
			models[endpoint] = id
		}
	}
	return &HuggingFaceTransport{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		models:  models,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &authTransport{token: cfg.Token, transport: http.DefaultTransport},
		},
	}, nil
}

func (t *HuggingFaceTransport) Send(ctx context.Context, endpoint Endpoint, payload any) (json.RawMessage, error) {
	modelID, ok := t.models[endpoint]
	if !ok {
		return nil, &RequestFailedError{Endpoint: endpoint, Detail: "unknown endpoint"}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestFailedError{Endpoint: endpoint, Detail: "marshal request body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/"+modelID, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestFailedError{Endpoint: endpoint, Detail: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &RequestFailedError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, rateLimited(endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
		return nil, &RequestFailedError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(detail)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestFailedError{Endpoint: endpoint, StatusCode: resp.StatusCode, Detail: "read response body", Err: err}
	}
	if !json.Valid(data) {
		return nil, &RequestFailedError{Endpoint: endpoint, StatusCode: resp.StatusCode, Detail: fmt.Sprintf("invalid json response (%d bytes)", len(data))}
	}
	return json.RawMessage(data), nil
}

type authTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	return t.transport.RoundTrip(reqCopy)
}
