package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-stepgate/core"
)

func TestRESTAdapter_PostFormSendsEncodedBody(t *testing.T) {
	var gotContentType, gotAccept, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	res, err := adapter.PostForm(context.Background(), server.URL, url.Values{"code": {"abc"}, "client_id": {"id"}}, map[string]string{"Accept": "application/json"})
	if err != nil {
		t.Fatalf("post form: %v", err)
	}
	if res.StatusCode != http.StatusOK || string(res.Body) != `{"access_token":"tok"}` {
		t.Fatalf("unexpected response %#v", res)
	}
	if gotContentType != ContentTypeForm || gotAccept != "application/json" {
		t.Fatalf("unexpected headers content-type=%q accept=%q", gotContentType, gotAccept)
	}
	if gotBody != "client_id=id&code=abc" {
		t.Fatalf("unexpected form body %q", gotBody)
	}
}

func TestRESTAdapter_PostJSONRelaysErrorStatus(t *testing.T) {
	metrics := &countingRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != ContentTypeJSON {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.Metrics = metrics
	res, err := adapter.PostJSON(context.Background(), server.URL, map[string]any{"model": "gpt-4o"}, nil)
	if err != nil {
		t.Fatalf("post json: %v", err)
	}
	if res.StatusCode != http.StatusTooManyRequests || string(res.Body) != "slow down" {
		t.Fatalf("unexpected response %#v", res)
	}
	if metrics.counters != 1 {
		t.Fatalf("expected one upstream counter, got %d", metrics.counters)
	}
}

func TestRESTAdapter_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	adapter := NewRESTAdapter(server.Client())
	adapter.MaxResponseBodyBytes = 4

	_, err := adapter.Do(context.Background(), core.TransportRequest{Method: http.MethodGet, URL: server.URL})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal || rich.Code != http.StatusBadGateway {
		t.Fatalf("unexpected envelope category=%s code=%d", rich.Category, rich.Code)
	}
	if rich.TextCode != core.GatewayErrorUpstreamFailure {
		t.Fatalf("unexpected text code %q", rich.TextCode)
	}
	if _, ok := core.ClientError(err); ok {
		t.Fatalf("expected transport failures to stay server side")
	}
}

func TestRESTAdapter_RequiresURL(t *testing.T) {
	_, err := NewRESTAdapter(nil).Do(context.Background(), core.TransportRequest{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal envelope, got %v", err)
	}

	var adapter *RESTAdapter
	if _, err := adapter.Do(context.Background(), core.TransportRequest{URL: "http://x"}); err == nil {
		t.Fatalf("expected nil adapter error")
	}
}

type countingRecorder struct {
	counters int
}

func (r *countingRecorder) IncCounter(context.Context, string, int64, map[string]string) {
	r.counters++
}

func (r *countingRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}
