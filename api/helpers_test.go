package api

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/goliatone/go-stepgate/llm"
	"github.com/goliatone/go-stepgate/providers/github"
)

type stubGitHub struct {
	exchangeFn func(ctx context.Context, code string) (string, error)
	userFn     func(ctx context.Context, accessToken string) (github.User, error)
}

func (s *stubGitHub) AuthorizeURL() string {
	return "https://github.test/login/oauth/authorize?client_id=cid&scope=user:email"
}

func (s *stubGitHub) ExchangeCode(ctx context.Context, code string) (string, error) {
	if s.exchangeFn == nil {
		return "", github.ErrMissingAccessToken
	}
	return s.exchangeFn(ctx, code)
}

func (s *stubGitHub) FetchUser(ctx context.Context, accessToken string) (github.User, error) {
	if s.userFn == nil {
		return github.User{}, github.ErrMissingLogin
	}
	return s.userFn(ctx, accessToken)
}

type stubProxy struct {
	completeFn func(ctx context.Context, route llm.Route, body []byte) (*core.Response, error)
}

func (s *stubProxy) Complete(ctx context.Context, route llm.Route, body []byte) (*core.Response, error) {
	return s.completeFn(ctx, route, body)
}

// flakyBlobStore fails deletes with deleteErr when it is set.
type flakyBlobStore struct {
	*core.MemoryBlobStore
	deleteErr error
}

func (s *flakyBlobStore) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryBlobStore.Delete(ctx, key)
}

type testGateway struct {
	router   *core.Router
	sessions *auth.Authenticator
	blobs    *flakyBlobStore
	accounts *core.MemoryAccountStore
}

func newTestGateway(t *testing.T, configure ...func(*Dependencies)) *testGateway {
	t.Helper()
	blobs := &flakyBlobStore{MemoryBlobStore: core.NewMemoryBlobStore()}
	accounts := core.NewMemoryAccountStore()
	store, err := documents.New(blobs, documents.WithPageSize(2))
	if err != nil {
		t.Fatalf("new document store: %v", err)
	}
	codec, err := auth.NewTokenCodec("test-secret")
	if err != nil {
		t.Fatalf("new token codec: %v", err)
	}
	sessions := auth.NewAuthenticator(codec, time.Hour)

	deps := Dependencies{
		Commands:      NewCommands(store, accounts, time.Now),
		Queries:       NewQueries(store, accounts),
		Authenticator: sessions,
		Tokens:        sessions,
		GitHub:        &stubGitHub{},
	}
	for _, fn := range configure {
		fn(&deps)
	}
	services, err := NewServices(deps)
	if err != nil {
		t.Fatalf("new services: %v", err)
	}
	registry, err := core.NewServiceRegistry(services...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return &testGateway{
		router:   core.NewRouter(registry),
		sessions: sessions,
		blobs:    blobs,
		accounts: accounts,
	}
}

func (g *testGateway) tokenFor(t *testing.T, username string) string {
	t.Helper()
	token, err := g.sessions.IssueFor(username, username+"@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (g *testGateway) do(method string, target string, body string, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	return rec
}

func expectResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, body string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%q)", status, rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != body {
		t.Fatalf("expected body %q, got %q", body, got)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%q)", status, rec.Code, rec.Body.String())
	}
}

var errDiskFull = errors.New("disk full")
