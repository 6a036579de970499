package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIConfig configures any OpenAI-compatible chat endpoint, including
// OpenRouter.
type OpenAIConfig struct {
	BaseURL string // e.g. https://openrouter.ai/api/v1
	APIKey  string
	Model   string
	Timeout time.Duration
	Referer string // OpenRouter attribution, sent as HTTP-Referer
	Title   string // OpenRouter attribution, sent as X-Title
}

// OpenAIClient talks to /chat/completions through openai-go.
type OpenAIClient struct {
	client oai.Client
	model  string
}

// NewOpenAI builds a client. Retries are disabled; a failed turn is reported
// to the user instead.
func NewOpenAI(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key must not be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model must not be empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	return &OpenAIClient{client: oai.NewClient(opts...), model: cfg.Model}, nil
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
	})
	if err != nil {
		return "", &RemoteModelError{Provider: c.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &RemoteModelError{Provider: c.Name(), Err: errors.New("empty choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}
