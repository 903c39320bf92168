package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultChatTimeout     = 30 * time.Second
	defaultChatTemperature = 0.2
)

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// OpenAITransport serves the summarization, question-generation and
// question-answering endpoints with chat completions. Responses are shaped like
// the Hugging Face endpoints so callers need not know which backend is in use.
type OpenAITransport struct {
	model  openai.ChatModel
	client *openai.Client
}

// NewOpenAITransport builds a transport against api.openai.com or baseURL.
// SDK-level retries are disabled; Client owns the retry policy.
func NewOpenAITransport(apiKey, baseURL string, model openai.ChatModel) (*OpenAITransport, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(opts...)
	return &OpenAITransport{
		model:  model,
		client: &cli,
	}, nil
}

func (t *OpenAITransport) Send(ctx context.Context, endpoint Endpoint, payload any) (json.RawMessage, error) {
	if t == nil || t.client == nil {
		return nil, &RequestFailedError{Endpoint: endpoint, Detail: "nil openai client"}
	}

	var out any
	switch p := payload.(type) {
	case SummarizationRequest:
		temperature := defaultChatTemperature
		if !p.Parameters.DoSample {
			temperature = 0
		}
		system := "You are a concise assistant. Summarize the text you are given in plain prose."
		if p.Parameters.MaxLength > 0 {
			system += fmt.Sprintf(" Use at most %d words.", p.Parameters.MaxLength)
		}
		content, err := t.complete(ctx, endpoint, system, p.Inputs, temperature)
		if err != nil {
			return nil, err
		}
		out = []SummaryOutput{{SummaryText: strings.TrimSpace(content)}}

	case QuestionGenerationRequest:
		content, err := t.complete(ctx, endpoint,
			"You write quiz questions about the passage in the user message. Return one question per line without numbering or commentary.",
			p.Inputs, defaultChatTemperature)
		if err != nil {
			return nil, err
		}
		questions := splitQuestions(content)
		if len(questions) == 0 {
			return nil, &RequestFailedError{Endpoint: endpoint, Detail: "openai: no questions returned"}
		}
		out = []GeneratedText{{GeneratedText: strings.Join(questions, QuestionSeparator)}}

	case QuestionAnsweringRequest:
		content, err := t.complete(ctx, endpoint,
			"You answer questions with a short phrase taken from the provided context only.",
			fmt.Sprintf("Context:\n%s\n\nQuestion: %s", p.Context, p.Question), 0)
		if err != nil {
			return nil, err
		}
		out = QuestionAnsweringResponse{Answer: strings.TrimSpace(content)}

	default:
		return nil, &RequestFailedError{Endpoint: endpoint, Detail: fmt.Sprintf("unsupported payload %T", payload)}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, &RequestFailedError{Endpoint: endpoint, Detail: "marshal response", Err: err}
	}
	return data, nil
}

func (t *OpenAITransport) complete(ctx context.Context, endpoint Endpoint, system, user string, temperature float64) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	resp, err := t.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:       t.model,
		Messages:    buildMessages(system, user),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", classifyOpenAIError(endpoint, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &RequestFailedError{Endpoint: endpoint, Detail: "openai: no choices returned"}
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(endpoint Endpoint, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return rateLimited(endpoint)
		}
		return &RequestFailedError{Endpoint: endpoint, StatusCode: apiErr.StatusCode, Err: err}
	}
	return &RequestFailedError{Endpoint: endpoint, Err: err}
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

// splitQuestions turns a line-per-question completion into clean questions,
// dropping list markers and blank lines.
func splitQuestions(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		q := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if q != "" {
			out = append(out, q)
		}
	}
	return out
}
