package stepgate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-stepgate/command"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/goliatone/go-stepgate/query"
)

func newTestConfig() Config {
	return Config{Auth: core.AuthConfig{JWTSecret: "facade-secret"}}
}

func serve(t *testing.T, handler http.Handler, method string, target string, body string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresSecret(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected missing jwt secret to fail")
	}
}

func TestNew_WiresCommandsAndQueries(t *testing.T) {
	gateway, err := New(newTestConfig())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	commands := gateway.Commands()
	if commands.SaveReview == nil || commands.SaveProblem == nil || commands.Signup == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := gateway.Queries()
	if queries.LoadReview == nil || queries.FileHistory == nil || queries.AuthenticateCredentials == nil {
		t.Fatalf("expected query handlers to be wired")
	}

	ctx := context.Background()
	if err := commands.SaveReview.Execute(ctx, command.SaveReviewMessage{
		Owner:  "alice",
		Review: documents.Review{Rating: 3, Message: "fine"},
	}); err != nil {
		t.Fatalf("save review: %v", err)
	}
	review, err := queries.LoadReview.Query(ctx, query.LoadReviewMessage{Owner: "alice"})
	if err != nil {
		t.Fatalf("load review: %v", err)
	}
	if review.Rating != 3 || review.Message != "fine" {
		t.Fatalf("unexpected review %#v", review)
	}

	// commands and the http surface share one store
	token, err := gateway.IssueToken("alice", "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec := serve(t, gateway.Handler(), http.MethodGet, "/review/v1/load", "", token)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"rating":3,"message":"fine"}` {
		t.Fatalf("unexpected review response %d %s", rec.Code, rec.Body.String())
	}
}

func TestGateway_MountsEveryService(t *testing.T) {
	gateway, err := New(newTestConfig())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	paths := map[string]bool{}
	for _, path := range gateway.Paths() {
		paths[path] = true
	}
	for _, want := range []string{
		"/auth/v1/", "/problem/v1/", "/problem/v2/", "/abstraction/v1/", "/abstractionInbetween/v1/",
		"/review/v1/", "/customProblems/v1/", "/test/v1/",
		"/openai/v1/", "/openai/v2/", "/openai/v3/", "/openai/v4/", "/openai/v5/", "/openai/v6/",
	} {
		if !paths[want] {
			t.Fatalf("expected %s to be mounted, got %v", want, gateway.Paths())
		}
	}
}

func TestGateway_SignupLoginAndVerify(t *testing.T) {
	gateway, err := New(newTestConfig())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	handler := gateway.Handler()

	rec := serve(t, handler, http.MethodPost, "/auth/v1/signup", `{"username":"alice","password":"pw","email":"a@example.com"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(t, handler, http.MethodPost, "/auth/v1/login", `{"username":"alice","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var reply struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode login reply: %v", err)
	}

	principal, err := gateway.VerifyToken(reply.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if principal.Username != "alice" || principal.Email != "a@example.com" {
		t.Fatalf("unexpected principal %#v", principal)
	}
	if _, err := gateway.VerifyToken(reply.Token + "x"); err == nil {
		t.Fatalf("expected tampered token to fail")
	}
}

func TestGateway_CompletionUpstream(t *testing.T) {
	var gotAuth string
	var gotRequest struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode upstream request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{ "choices": [ {"message": {"content": "ok"}} ] }`)
	}))
	defer upstream.Close()

	cfg := newTestConfig()
	cfg.LLM = core.LLMConfig{APIKey: "sk-test", BaseURL: upstream.URL, Timeout: "5s"}
	gateway, err := New(cfg, WithHTTPClient(upstream.Client()))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	rec := serve(t, gateway.Handler(), http.MethodPost, "/openai/v2/", `{"requestBody":{"Tree":{"steps":[]},"Problem":"two sum"}}`, "")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"choices":[{"message":{"content":"ok"}}]}` {
		t.Fatalf("unexpected completion response %d %s", rec.Code, rec.Body.String())
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected api key to be forwarded, got %q", gotAuth)
	}
	if gotRequest.Model != "gpt-4o" || len(gotRequest.Messages) != 1 || !strings.Contains(gotRequest.Messages[0].Content, "two sum") {
		t.Fatalf("unexpected upstream request %#v", gotRequest)
	}

	rec = serve(t, gateway.Handler(), http.MethodPost, "/openai/v2/", `{"Problem":"two sum"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected missing tree to be rejected, got %d", rec.Code)
	}
}

func TestGateway_GitHubCallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			if r.PostForm.Get("code") != "abc" || r.PostForm.Get("client_secret") != "shh" {
				t.Errorf("unexpected token form %v", r.PostForm)
			}
			_, _ = io.WriteString(w, `{"access_token":"gh-token"}`)
		case "/user":
			if r.Header.Get("Authorization") != "Bearer gh-token" {
				t.Errorf("unexpected user authorization %q", r.Header.Get("Authorization"))
			}
			_, _ = io.WriteString(w, `{"login":"octocat","email":null}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	cfg := newTestConfig()
	cfg.Auth.GitHub = core.GitHubConfig{
		ClientID:     "cid",
		ClientSecret: "shh",
		AuthorizeURL: upstream.URL + "/authorize",
		TokenURL:     upstream.URL + "/token",
		UserURL:      upstream.URL + "/user",
	}
	gateway, err := New(cfg, WithHTTPClient(upstream.Client()))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	rec := serve(t, gateway.Handler(), http.MethodGet, "/auth/v1/github/login", "", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != upstream.URL+"/authorize?client_id=cid&scope=user:email" {
		t.Fatalf("unexpected redirect %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = serve(t, gateway.Handler(), http.MethodGet, "/auth/v1/github/callback?code=abc", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("callback: %d %s", rec.Code, rec.Body.String())
	}
	var reply struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode callback reply: %v", err)
	}
	principal, err := gateway.VerifyToken(reply.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if principal.Username != "octocat" || principal.Email != "" {
		t.Fatalf("unexpected principal %#v", principal)
	}
}

func TestNewStoreFactory(t *testing.T) {
	if factory := NewStoreFactory(DefaultConfig()); factory != nil {
		t.Fatalf("expected no factory for the memory driver")
	}
	cfg := DefaultConfig()
	cfg.Storage.Driver = "sqlite3"
	cfg.Storage.DSN = "file::memory:"
	if factory := NewStoreFactory(cfg); factory == nil {
		t.Fatalf("expected a factory for sqlite")
	}
}

func TestGateway_Server(t *testing.T) {
	cfg := newTestConfig()
	cfg.HTTP.Addr = "127.0.0.1:0"
	gateway, err := New(cfg)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	server := gateway.Server()
	if server.Addr != "127.0.0.1:0" || server.Handler == nil {
		t.Fatalf("unexpected server %#v", server)
	}
	if server.ReadTimeout != gateway.Config().ReadTimeout() || server.WriteTimeout != gateway.Config().WriteTimeout() {
		t.Fatalf("expected configured timeouts")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gateway.ListenAndServe(ctx); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
