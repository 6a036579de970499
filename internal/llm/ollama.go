package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	Host        string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OllamaClient chats with a local model through the Ollama API.
type OllamaClient struct {
	client      *api.Client
	model       string
	temperature float64
}

// NewOllama creates a client with pooled keep-alive connections, since every
// turn hits the same host.
func NewOllama(cfg OllamaConfig) (*OllamaClient, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.Host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return &OllamaClient{
		client:      api.NewClient(base, httpClient),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *OllamaClient) Name() string { return "ollama" }

func (c *OllamaClient) Complete(ctx context.Context, system, user string) (string, error) {
	stream := false
	var reply strings.Builder
	err := c.client.Chat(ctx, &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": 150, // spoken replies stay short
			"num_ctx":     1024,
		},
	}, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", &RemoteModelError{Provider: c.Name(), Err: err}
	}
	return reply.String(), nil
}

// HealthCheck verifies the server is reachable.
func (c *OllamaClient) HealthCheck(ctx context.Context) error {
	if err := c.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("cannot reach Ollama: %w", err)
	}
	return nil
}
