package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	WelcomeMessage        = "Welcome to the API!"
	NotImplementedMessage = "Service not implemented"
	InternalErrorMessage  = "Internal Server Error"
)

type RouterOption func(*Router)

func WithRouterLogger(logger Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithRouterMetrics(recorder MetricsRecorder) RouterOption {
	return func(r *Router) {
		if recorder != nil {
			r.metrics = recorder
		}
	}
}

func WithRouterErrorMapper(mapper ErrorMapper) RouterOption {
	return func(r *Router) {
		if mapper != nil {
			r.errorMapper = mapper
		}
	}
}

// Router dispatches requests to registered services and decorates every
// response with the cross-origin headers.
type Router struct {
	registry    *ServiceRegistry
	logger      Logger
	metrics     MetricsRecorder
	errorMapper ErrorMapper
}

func NewRouter(registry *ServiceRegistry, opts ...RouterOption) *Router {
	if registry == nil {
		registry = &ServiceRegistry{services: map[string]Service{}}
	}
	router := &Router{
		registry:    registry,
		logger:      nopLogger(),
		metrics:     NopMetricsRecorder{},
		errorMapper: gatewayErrorMapper,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(router)
	}
	return router
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()
	if r.Method == http.MethodOptions {
		applyCORS(w.Header())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	servicePath, subPath := SplitServicePath(r.URL.Path)
	res := rt.dispatch(r, servicePath, subPath)
	applyCORS(res.Header)
	res.write(w)

	rt.observe(r.Context(), startedAt, map[string]any{
		"method":  r.Method,
		"path":    r.URL.Path,
		"service": servicePath,
		"status":  res.Status,
	})
}

func (rt *Router) dispatch(r *http.Request, servicePath string, subPath string) (res *Response) {
	defer func() {
		if recovered := recover(); recovered != nil {
			rt.logError(r.Context(), "service panicked", map[string]any{
				"service": servicePath,
				"panic":   fmt.Sprint(recovered),
			})
			res = Text(http.StatusInternalServerError, InternalErrorMessage)
		}
	}()

	service, ok := rt.registry.Lookup(servicePath)
	if !ok {
		if r.URL.Path == "/" {
			return Text(http.StatusOK, WelcomeMessage)
		}
		return Text(http.StatusNotImplemented, NotImplementedMessage)
	}

	out, err := service.Handle(r, subPath)
	if err != nil {
		return rt.errorResponse(r.Context(), servicePath, err)
	}
	if out == nil {
		return Text(http.StatusNotImplemented, NotImplementedMessage)
	}
	if out.Header == nil {
		out.Header = http.Header{}
	}
	return out
}

func (rt *Router) errorResponse(ctx context.Context, servicePath string, err error) *Response {
	if clientErr, ok := ClientError(err); ok {
		return Text(clientErr.Code, clientErr.Message)
	}
	fields := map[string]any{
		"service": servicePath,
		"error":   err.Error(),
	}
	if mapped := rt.mapError(err); mapped != nil {
		fields["text_code"] = mapped.TextCode
		fields["category"] = mapped.Category.String()
	}
	rt.logError(ctx, "service failed", fields)
	return Text(http.StatusInternalServerError, InternalErrorMessage)
}

func (rt *Router) mapError(err error) *goerrors.Error {
	if rt.errorMapper == nil {
		return gatewayErrorMapper(err)
	}
	return rt.errorMapper(err)
}

func (rt *Router) observe(ctx context.Context, startedAt time.Time, fields map[string]any) {
	duration := time.Since(startedAt)
	fields["duration_ms"] = duration.Milliseconds()
	tags := map[string]string{
		"service": fmt.Sprint(fields["service"]),
		"status":  fmt.Sprint(fields["status"]),
	}
	rt.metrics.IncCounter(ctx, "gateway.requests.total", 1, cloneTags(tags))
	rt.metrics.ObserveHistogram(ctx, "gateway.requests.duration_ms", float64(duration.Milliseconds()), cloneTags(tags))
	logWithLevel(ctx, rt.logger, "info", "request handled", fields)
}

func (rt *Router) logError(ctx context.Context, message string, fields map[string]any) {
	logWithLevel(ctx, rt.logger, "error", message, fields)
}
