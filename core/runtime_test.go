package core

import (
	"context"
	"testing"
	"time"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

type stubStoreFactory struct {
	client any
	blobs  BlobStore
}

func (f *stubStoreFactory) BuildStores(client any) (StoreProvider, error) {
	f.client = client
	return f, nil
}

func (f *stubStoreFactory) BlobStore() BlobStore { return f.blobs }

func (f *stubStoreFactory) AccountStore() AccountStore { return NewMemoryAccountStore() }

func TestNewRuntime_DefaultDependencies(t *testing.T) {
	rt, err := NewRuntime(Config{Auth: AuthConfig{JWTSecret: "secret"}})
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if rt.Logger("stepgate.router") == nil {
		t.Fatalf("expected default logger")
	}
	if rt.BlobStore() == nil || rt.AccountStore() == nil {
		t.Fatalf("expected memory stores")
	}
	if rt.HTTPClient() == nil {
		t.Fatalf("expected default http client")
	}
	cfg := rt.Config()
	if cfg.Auth.JWTSecret != "secret" {
		t.Fatalf("expected runtime secret, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.StorageDriver() != StorageDriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.StorageDriver())
	}
}

func TestNewRuntime_RequiresSecret(t *testing.T) {
	if _, err := NewRuntime(Config{}); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestNewRuntime_LoadedConfigIsOverriddenByRuntime(t *testing.T) {
	provider := NewCfgxConfigProvider(StaticConfigLoader(map[string]any{
		"service_name": "from-file",
		"auth": map[string]any{
			"jwt_secret": "file-secret",
		},
	}))
	rt, err := NewRuntime(Config{ServiceName: "from-runtime"}, WithConfigProvider(provider))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if got := rt.Config().ServiceName; got != "from-runtime" {
		t.Fatalf("expected runtime service name, got %q", got)
	}
	if got := rt.Config().Auth.JWTSecret; got != "file-secret" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestNewRuntime_WithOverrides(t *testing.T) {
	logger := newCaptureLogger()
	blobs := NewMemoryBlobStore()
	factory := &stubStoreFactory{blobs: blobs}
	client := &struct{ Name string }{Name: "persistence"}
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	resolved := DefaultConfig()
	resolved.ServiceName = "resolved"
	resolved.Auth.JWTSecret = "s"
	resolved.Storage.Driver = StorageDriverSQLite
	resolved.Storage.DSN = "file:test.db"

	rt, err := NewRuntime(Config{},
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithConfigProvider(&fixedConfigProvider{}),
		WithOptionsResolver(&fixedOptionsResolver{cfg: resolved}),
		WithPersistenceClient(client),
		WithStoreFactory(factory),
		WithClock(func() time.Time { return fixed }),
	)
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if factory.client != client {
		t.Fatalf("expected persistence client to reach the store factory")
	}
	if rt.BlobStore() != blobs {
		t.Fatalf("expected blob store from factory")
	}
	if rt.Logger("anything") != logger {
		t.Fatalf("expected logger from provider")
	}
	if !rt.Now().Equal(fixed) {
		t.Fatalf("expected injected clock")
	}
	if rt.Config().ServiceName != "resolved" {
		t.Fatalf("expected resolver output, got %q", rt.Config().ServiceName)
	}
}

func TestNewRuntime_SQLDriverNeedsFactory(t *testing.T) {
	cfg := Config{
		Auth:    AuthConfig{JWTSecret: "s"},
		Storage: StorageConfig{Driver: "sqlite3", DSN: "file:test.db"},
	}
	if _, err := NewRuntime(cfg); err == nil {
		t.Fatalf("expected missing store factory error")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.JWTSecret = "s"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate: %v", err)
	}
	if cfg.TokenTTL() != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.TokenTTL())
	}

	bad := cfg
	bad.Auth.TokenTTL = "soon"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected invalid ttl error")
	}
	bad = cfg
	bad.Storage.Driver = "postgres"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected dsn requirement for postgres")
	}
	if cfg.WriteTimeout() <= cfg.LLMTimeout() {
		t.Fatalf("expected write timeout %s above llm timeout %s", cfg.WriteTimeout(), cfg.LLMTimeout())
	}
	bad = cfg
	bad.HTTP.WriteTimeout = "120s"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected write timeout equal to llm timeout to fail")
	}
	bad.HTTP.WriteTimeout = "0s"
	if err := bad.Validate(); err != nil {
		t.Fatalf("expected disabled write timeout to pass: %v", err)
	}
	bad = cfg
	bad.Storage.Driver = "mongo"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
