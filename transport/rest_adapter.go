package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-stepgate/core"
)

const KindREST = "rest"

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

const defaultRESTClientTimeout = 30 * time.Second
const defaultRESTResponseBodyLimit int64 = 10 << 20 // 10 MiB
const upstreamLogBodyPreviewBytes = 256

// RESTAdapter performs the gateway's outbound HTTP calls: the completion API
// and the GitHub OAuth endpoints. Every response is fully buffered.
type RESTAdapter struct {
	Client               core.HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
	Logger               core.Logger
	Metrics              core.MetricsRecorder
}

func NewRESTAdapter(client core.HTTPDoer) *RESTAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	return &RESTAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultRESTResponseBodyLimit,
		Metrics:              core.NopMetricsRecorder{},
	}
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, transportError(
			"transport: rest adapter requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	httpReq, err := a.buildRequest(requestCtx, req)
	if err != nil {
		return core.TransportResponse{}, err
	}
	host := httpReq.URL.Host

	startedAt := time.Now()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		a.observe(ctx, host, "error", startedAt)
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "method": httpReq.Method, "host": host},
		)
	}
	defer httpRes.Body.Close()

	body, err := readLimited(httpRes, resolveResponseBodyLimit(req.MaxResponseBodyBytes, a.MaxResponseBodyBytes))
	if err != nil {
		a.observe(ctx, host, "error", startedAt)
		return core.TransportResponse{}, err
	}
	a.observe(ctx, host, fmt.Sprint(httpRes.StatusCode), startedAt)
	if httpRes.StatusCode >= http.StatusBadRequest {
		core.LogError(ctx, a.Logger, "upstream returned an error status", map[string]any{
			"host":         host,
			"status":       httpRes.StatusCode,
			"body_preview": preview(body),
		})
	}

	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       body,
		Metadata: map[string]any{
			"duration_ms": time.Since(startedAt).Milliseconds(),
			"kind":        KindREST,
		},
	}, nil
}

// PostForm sends values url-encoded, the way OAuth token endpoints expect.
func (a *RESTAdapter) PostForm(ctx context.Context, target string, values url.Values, headers map[string]string) (core.TransportResponse, error) {
	merged := cloneHeaders(headers)
	merged["Content-Type"] = ContentTypeForm
	return a.Do(ctx, core.TransportRequest{
		Method:  http.MethodPost,
		URL:     target,
		Headers: merged,
		Body:    []byte(values.Encode()),
	})
}

// PostJSON marshals payload as the request body.
func (a *RESTAdapter) PostJSON(ctx context.Context, target string, payload any, headers map[string]string) (core.TransportResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryInternal,
			"transport: encode json body",
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	merged := cloneHeaders(headers)
	merged["Content-Type"] = ContentTypeJSON
	return a.Do(ctx, core.TransportRequest{
		Method:  http.MethodPost,
		URL:     target,
		Headers: merged,
		Body:    body,
	})
}

func (a *RESTAdapter) buildRequest(ctx context.Context, req core.TransportRequest) (*http.Request, error) {
	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	target := strings.TrimSpace(req.URL)
	if target == "" {
		return nil, transportError(
			"transport: request url is required",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	parsedURL, err := url.Parse(target)
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryInternal,
			"transport: invalid request url",
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	if len(req.Query) > 0 {
		query := parsedURL.Query()
		for key, value := range req.Query {
			if strings.TrimSpace(key) == "" {
				continue
			}
			query.Set(strings.TrimSpace(key), value)
		}
		parsedURL.RawQuery = query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, parsedURL.String(), body)
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryInternal,
			"transport: create http request",
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST, "method": method},
		)
	}
	for _, headers := range []map[string]string{a.DefaultHeaders, req.Headers} {
		for key, value := range headers {
			if strings.TrimSpace(key) == "" {
				continue
			}
			httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
		}
	}
	return httpReq, nil
}

func readLimited(res *http.Response, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "status_code": res.StatusCode},
		)
	}
	if int64(len(body)) > limit {
		return nil, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{
				"adapter":          KindREST,
				"status_code":      res.StatusCode,
				"response_limit_b": limit,
			},
		)
	}
	return body, nil
}

func (a *RESTAdapter) observe(ctx context.Context, host string, status string, startedAt time.Time) {
	if a.Metrics == nil {
		return
	}
	tags := map[string]string{"host": host, "status": status}
	a.Metrics.IncCounter(ctx, "gateway.upstream.requests.total", 1, tags)
	a.Metrics.ObserveHistogram(ctx, "gateway.upstream.duration_ms", float64(time.Since(startedAt).Milliseconds()), tags)
}

func preview(body []byte) string {
	if len(body) <= upstreamLogBodyPreviewBytes {
		return string(body)
	}
	return string(body[:upstreamLogBodyPreviewBytes]) + "..."
}

func cloneHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for key, value := range headers {
		out[key] = value
	}
	return out
}

func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

func resolveResponseBodyLimit(requestLimit int64, adapterLimit int64) int64 {
	if requestLimit > 0 {
		return requestLimit
	}
	if adapterLimit > 0 {
		return adapterLimit
	}
	return defaultRESTResponseBodyLimit
}

var _ core.TransportAdapter = (*RESTAdapter)(nil)
