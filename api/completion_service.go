package api

import (
	"net/http"

	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/llm"
)

const MethodNotAllowedMessage = "Method Not Allowed"

type CompletionOption func(*CompletionService)

func WithCompletionBodyLimit(limit int64) CompletionOption {
	return func(s *CompletionService) {
		s.body = newBodyDecoder(limit)
	}
}

// CompletionService relays one prompt route to the completion API. It
// ignores the sub-path and accepts POST only.
type CompletionService struct {
	route llm.Route
	proxy CompletionProxy
	body  bodyDecoder
}

func NewCompletionService(route llm.Route, proxy CompletionProxy, opts ...CompletionOption) (*CompletionService, error) {
	if err := route.Validate(); err != nil {
		return nil, err
	}
	if proxy == nil {
		return nil, apiDependencyError("api: completion proxy is required")
	}
	service := &CompletionService{
		route: route,
		proxy: proxy,
		body:  newBodyDecoder(0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}
	return service, nil
}

func (s *CompletionService) Path() string {
	return s.route.Path()
}

func (s *CompletionService) Handle(r *http.Request, _ string) (*core.Response, error) {
	if r.Method != http.MethodPost {
		return nil, core.MethodNotAllowed(MethodNotAllowedMessage)
	}
	body, err := s.body.read(r)
	if err != nil {
		return nil, err
	}
	return s.proxy.Complete(r.Context(), s.route, body)
}

var _ core.Service = (*CompletionService)(nil)
