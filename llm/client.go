package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/transport"
)

const DefaultBaseURL = "https://api.openai.com/v1"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func ClientConfigFrom(cfg core.Config) ClientConfig {
	return ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLMTimeout(),
	}
}

// Client posts chat completion requests through a transport adapter. It
// never interprets the upstream body.
type Client struct {
	transport core.TransportAdapter
	config    ClientConfig
}

func NewClient(adapter core.TransportAdapter, cfg ClientConfig) (*Client, error) {
	if adapter == nil {
		return nil, fmt.Errorf("llm: transport adapter is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{transport: adapter, config: cfg}, nil
}

func (c *Client) CompletionsURL() string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
}

func (c *Client) Complete(ctx context.Context, req ChatRequest) (core.TransportResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return core.TransportResponse{}, fmt.Errorf("llm: encode chat request: %w", err)
	}
	return c.transport.Do(ctx, core.TransportRequest{
		Method: http.MethodPost,
		URL:    c.CompletionsURL(),
		Headers: map[string]string{
			"Content-Type":  transport.ContentTypeJSON,
			"Authorization": "Bearer " + c.config.APIKey,
		},
		Body:    body,
		Timeout: c.config.Timeout,
	})
}
