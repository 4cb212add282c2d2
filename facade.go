package stepgate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-stepgate/api"
	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
	"github.com/goliatone/go-stepgate/llm"
	"github.com/goliatone/go-stepgate/providers/github"
	sqlstore "github.com/goliatone/go-stepgate/store/sql"
	"github.com/goliatone/go-stepgate/transport"
)

const shutdownTimeout = 10 * time.Second

type Commands = api.Commands

type Queries = api.Queries

// Gateway is the assembled step gateway: stores, token codec, the command
// and query handlers and the router that serves them.
type Gateway struct {
	runtime  *core.Runtime
	codec    *auth.TokenCodec
	sessions *auth.Authenticator
	commands Commands
	queries  Queries
	registry *core.ServiceRegistry
	router   *core.Router
}

func New(cfg Config, opts ...Option) (*Gateway, error) {
	runtime, err := core.NewRuntime(cfg, opts...)
	if err != nil {
		return nil, err
	}
	resolved := runtime.Config()

	store, err := documents.New(runtime.BlobStore(),
		documents.WithPageSize(resolved.ListPageSize()),
		documents.WithLogger(runtime.Logger("stepgate.documents")),
	)
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewTokenCodec(resolved.Auth.JWTSecret, auth.WithNow(runtime.Clock()))
	if err != nil {
		return nil, err
	}
	sessions := auth.NewAuthenticator(codec, resolved.TokenTTL())

	adapter := transport.NewRESTAdapter(runtime.HTTPClient())
	adapter.Logger = runtime.Logger("stepgate.transport")
	adapter.Metrics = runtime.MetricsRecorder()

	client, err := llm.NewClient(adapter, llm.ClientConfigFrom(resolved))
	if err != nil {
		return nil, err
	}
	prompts, err := llm.LoadPrompts()
	if err != nil {
		return nil, err
	}
	proxy, err := llm.NewProxy(client, prompts, llm.WithProxyLogger(runtime.Logger("stepgate.llm")))
	if err != nil {
		return nil, err
	}
	routes := llm.DefaultRoutes()
	if err := proxy.CheckRoutes(routes); err != nil {
		return nil, err
	}

	commands := api.NewCommands(store, runtime.AccountStore(), runtime.Clock())
	queries := api.NewQueries(store, runtime.AccountStore())
	services, err := api.NewServices(api.Dependencies{
		Commands:      commands,
		Queries:       queries,
		Authenticator: sessions,
		Tokens:        sessions,
		GitHub:        github.New(github.ConfigFrom(resolved.Auth.GitHub), adapter),
		Completions:   proxy,
		Routes:        routes,
		Logger:        runtime.Logger("stepgate.api"),
		MaxBodyBytes:  resolved.HTTP.MaxBodyBytes,
	})
	if err != nil {
		return nil, err
	}
	registry, err := core.NewServiceRegistry(services...)
	if err != nil {
		return nil, err
	}
	router := core.NewRouter(registry,
		core.WithRouterLogger(runtime.Logger("stepgate.router")),
		core.WithRouterMetrics(runtime.MetricsRecorder()),
		core.WithRouterErrorMapper(runtime.ErrorMapper()),
	)

	core.LogInfo(context.Background(), runtime.Logger("stepgate"), "gateway assembled", map[string]any{
		"service_name": resolved.ServiceName,
		"storage":      resolved.StorageDriver(),
		"services":     len(registry.Paths()),
	})

	return &Gateway{
		runtime:  runtime,
		codec:    codec,
		sessions: sessions,
		commands: commands,
		queries:  queries,
		registry: registry,
		router:   router,
	}, nil
}

// NewStoreFactory returns the SQL store factory for cfg's storage section,
// or nil for the memory driver.
func NewStoreFactory(cfg Config) StoreFactory {
	if cfg.StorageDriver() == core.StorageDriverMemory {
		return nil
	}
	opts := []sqlstore.FactoryOption{sqlstore.WithListPageSize(cfg.ListPageSize())}
	if cfg.Storage.Cache.Enabled {
		opts = append(opts, sqlstore.WithCacheTTL(cfg.CacheTTL()))
	}
	return sqlstore.NewRepositoryFactory(opts...)
}

func (g *Gateway) Handler() http.Handler {
	if g == nil {
		return nil
	}
	return g.router
}

func (g *Gateway) Config() Config {
	if g == nil {
		return Config{}
	}
	return g.runtime.Config()
}

func (g *Gateway) Runtime() *core.Runtime {
	if g == nil {
		return nil
	}
	return g.runtime
}

func (g *Gateway) Commands() Commands {
	if g == nil {
		return Commands{}
	}
	return g.commands
}

func (g *Gateway) Queries() Queries {
	if g == nil {
		return Queries{}
	}
	return g.queries
}

func (g *Gateway) Paths() []string {
	if g == nil {
		return nil
	}
	return g.registry.Paths()
}

// IssueToken signs a session token for username the same way the login
// endpoints do.
func (g *Gateway) IssueToken(username string, email string) (string, error) {
	if g == nil {
		return "", fmt.Errorf("stepgate: gateway is nil")
	}
	return g.sessions.IssueFor(username, email)
}

func (g *Gateway) VerifyToken(token string) (auth.Principal, error) {
	if g == nil {
		return auth.Principal{}, fmt.Errorf("stepgate: gateway is nil")
	}
	var principal auth.Principal
	if err := g.codec.VerifyInto(token, &principal); err != nil {
		return auth.Principal{}, err
	}
	return principal, nil
}

func (g *Gateway) Server() *http.Server {
	cfg := g.Config()
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           g.Handler(),
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
	}
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (g *Gateway) ListenAndServe(ctx context.Context) error {
	if g == nil {
		return fmt.Errorf("stepgate: gateway is nil")
	}
	server := g.Server()
	logger := g.runtime.Logger("stepgate")

	errCh := make(chan error, 1)
	go func() {
		core.LogInfo(ctx, logger, "gateway listening", map[string]any{"addr": server.Addr})
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		core.LogError(shutdownCtx, logger, "gateway shutdown failed", map[string]any{"error": err.Error()})
		return err
	}
	core.LogInfo(shutdownCtx, logger, "gateway stopped", nil)
	return nil
}
