package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/goliatone/go-stepgate/core"
)

const UpstreamErrorPrefix = "OpenAI API Error: "

// Proxy answers a completion route: it validates the payload, renders the
// prompt and relays the upstream reply.
type Proxy struct {
	client  *Client
	prompts *Prompts
	logger  core.Logger
}

type ProxyOption func(*Proxy)

func WithProxyLogger(logger core.Logger) ProxyOption {
	return func(p *Proxy) {
		p.logger = logger
	}
}

func NewProxy(client *Client, prompts *Prompts, opts ...ProxyOption) (*Proxy, error) {
	if client == nil {
		return nil, fmt.Errorf("llm: client is required")
	}
	if prompts == nil {
		return nil, fmt.Errorf("llm: prompts are required")
	}
	proxy := &Proxy{client: client, prompts: prompts}
	for _, opt := range opts {
		if opt != nil {
			opt(proxy)
		}
	}
	return proxy, nil
}

// CheckRoutes fails when a route is malformed or names an unknown template.
func (p *Proxy) CheckRoutes(routes []Route) error {
	for _, route := range routes {
		if err := route.Validate(); err != nil {
			return err
		}
		if !p.prompts.Has(route.Template) {
			return fmt.Errorf("llm: route %s uses unknown template %q", route.Version, route.Template)
		}
	}
	return nil
}

// Complete returns a 400 client error for missing fields. Undecodable
// bodies and transport failures come back as plain errors.
func (p *Proxy) Complete(ctx context.Context, route Route, body []byte) (*core.Response, error) {
	payload, err := route.Payload(body)
	if err != nil {
		return nil, err
	}
	if field, missing := route.Missing(payload); missing {
		core.LogInfo(ctx, p.logger, "completion payload incomplete", map[string]any{
			"route": route.Version,
			"field": field,
		})
		return nil, core.BadInput(route.MissingMessage)
	}

	prompt, err := p.prompts.Render(route.Template, payload)
	if err != nil {
		return nil, err
	}
	res, err := p.client.Complete(ctx, ChatRequest{
		Model:       route.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: route.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return core.Text(res.StatusCode, UpstreamErrorPrefix+string(res.Body)), nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, res.Body); err != nil {
		return nil, fmt.Errorf("llm: decode upstream response: %w", err)
	}
	return core.RawJSON(http.StatusOK, compact.Bytes()), nil
}
