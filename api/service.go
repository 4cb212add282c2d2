package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
)

const NotFoundMessage = "Not Found"

// Wildcard as a route action matches any non-empty first segment that no
// exact route claims.
const Wildcard = "*"

type Access int

const (
	AccessUser Access = iota
	AccessPublic
)

type Authenticator interface {
	Authenticate(r *http.Request) (auth.Principal, error)
}

// Call is one request as seen by a route handler.
type Call struct {
	Request   *http.Request
	SubPath   string
	Segments  []string
	Principal auth.Principal
}

func newCall(r *http.Request, subPath string) Call {
	return Call{
		Request:  r,
		SubPath:  subPath,
		Segments: strings.Split(subPath, "/"),
	}
}

func (c Call) Context() context.Context {
	if c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}

func (c Call) Action() string {
	return c.Segment(0)
}

func (c Call) Segment(index int) string {
	if index < 0 || index >= len(c.Segments) {
		return ""
	}
	return c.Segments[index]
}

func (c Call) Query(name string) string {
	if c.Request == nil || c.Request.URL == nil {
		return ""
	}
	return c.Request.URL.Query().Get(name)
}

func (c Call) Owner() string {
	return c.Principal.Username
}

type HandlerFunc func(call Call) (*core.Response, error)

type Route struct {
	Method string
	Action string
	Access Access
	Handle HandlerFunc
}

type routeKey struct {
	method string
	action string
}

type ServiceOption func(*Service)

// WithAuthenticateFirst rejects unauthenticated callers before route lookup,
// so unknown routes answer 401 rather than 404. Public routes are exempt.
func WithAuthenticateFirst() ServiceOption {
	return func(s *Service) {
		s.authenticateFirst = true
	}
}

// WithWholeSubPathActions matches route actions against the entire sub-path
// instead of its first segment.
func WithWholeSubPathActions() ServiceOption {
	return func(s *Service) {
		s.wholeSubPath = true
	}
}

// WithPrecondition runs check after authentication and before dispatch,
// unknown routes included.
func WithPrecondition(check func(call Call) error) ServiceOption {
	return func(s *Service) {
		s.precondition = check
	}
}

// WithUnmatched replaces the 404 answer for requests no route claims.
func WithUnmatched(handler HandlerFunc) ServiceOption {
	return func(s *Service) {
		s.unmatched = handler
	}
}

func WithServiceLogger(logger core.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service dispatches on (method, first sub-path segment).
type Service struct {
	prefix            string
	authenticator     Authenticator
	routes            map[routeKey]Route
	authenticateFirst bool
	wholeSubPath      bool
	precondition      func(call Call) error
	unmatched         HandlerFunc
	logger            core.Logger
}

func NewService(prefix string, authenticator Authenticator, routes []Route, opts ...ServiceOption) (*Service, error) {
	service := &Service{
		prefix:        prefix,
		authenticator: authenticator,
		routes:        make(map[routeKey]Route, len(routes)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(service)
		}
	}
	for _, route := range routes {
		if route.Handle == nil {
			return nil, fmt.Errorf("api: %s route %s %q has no handler", prefix, route.Method, route.Action)
		}
		if route.Access == AccessUser && authenticator == nil {
			return nil, fmt.Errorf("api: %s route %s %q requires an authenticator", prefix, route.Method, route.Action)
		}
		key := routeKey{method: strings.ToUpper(route.Method), action: route.Action}
		if _, exists := service.routes[key]; exists {
			return nil, fmt.Errorf("api: %s route %s %q registered twice", prefix, route.Method, route.Action)
		}
		service.routes[key] = route
	}
	if service.authenticateFirst && authenticator == nil {
		return nil, fmt.Errorf("api: %s authenticates first but has no authenticator", prefix)
	}
	return service, nil
}

func (s *Service) Path() string {
	return s.prefix
}

func (s *Service) Handle(r *http.Request, subPath string) (*core.Response, error) {
	call := newCall(r, subPath)
	action := call.Action()
	if s.wholeSubPath {
		action = subPath
	}
	route, ok := s.lookup(r.Method, action)

	needsAuth := ok && route.Access == AccessUser
	if s.authenticateFirst {
		needsAuth = !ok || route.Access == AccessUser
	}
	if needsAuth {
		principal, err := s.authenticator.Authenticate(r)
		if err != nil {
			return nil, err
		}
		call.Principal = principal
	}

	if s.precondition != nil {
		if err := s.precondition(call); err != nil {
			return nil, err
		}
	}
	if !ok {
		if s.unmatched != nil {
			return s.unmatched(call)
		}
		return nil, core.NotFound(NotFoundMessage)
	}
	return route.Handle(call)
}

func (s *Service) lookup(method string, action string) (Route, bool) {
	method = strings.ToUpper(method)
	if route, ok := s.routes[routeKey{method: method, action: action}]; ok {
		return route, true
	}
	if action == "" {
		return Route{}, false
	}
	route, ok := s.routes[routeKey{method: method, action: Wildcard}]
	return route, ok
}

var _ core.Service = (*Service)(nil)
