package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type StoreProvider interface {
	BlobStore() BlobStore
	AccountStore() AccountStore
}

type StoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type runtimeBuilder struct {
	runtimeConfig     Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorMapper       ErrorMapper
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	persistenceClient any
	storeFactory      any
	blobStore         BlobStore
	accountStore      AccountStore
	httpClient        HTTPDoer
	now               func() time.Time
}

type Option func(*runtimeBuilder)

func WithLogger(logger Logger) Option {
	return func(b *runtimeBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *runtimeBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *runtimeBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *runtimeBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *runtimeBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *runtimeBuilder) {
		b.optionsResolver = resolver
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *runtimeBuilder) {
		b.persistenceClient = client
	}
}

// WithStoreFactory accepts either a StoreFactory, which is handed the
// persistence client, or a ready StoreProvider.
func WithStoreFactory(factory any) Option {
	return func(b *runtimeBuilder) {
		b.storeFactory = factory
	}
}

func WithBlobStore(store BlobStore) Option {
	return func(b *runtimeBuilder) {
		b.blobStore = store
	}
}

func WithAccountStore(store AccountStore) Option {
	return func(b *runtimeBuilder) {
		b.accountStore = store
	}
}

func WithHTTPClient(client HTTPDoer) Option {
	return func(b *runtimeBuilder) {
		b.httpClient = client
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *runtimeBuilder) {
		b.now = now
	}
}

func defaultRuntimeBuilder(runtime Config) runtimeBuilder {
	loggerProvider, logger := glog.Resolve("stepgate", nil, nil)
	return runtimeBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorMapper:     gatewayErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
		now:             time.Now,
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticConfigLoader serves a fixed raw map, mostly useful in tests and for
// embedding callers that already parsed their configuration.
func StaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

// Load builds the configuration from raw values. Validation runs once the
// final layers are resolved, so a partial file is accepted here.
func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	putString(layer, "service_name", cfg.ServiceName, includeZero)

	httpLayer := map[string]any{}
	putString(httpLayer, "addr", cfg.HTTP.Addr, includeZero)
	putString(httpLayer, "read_timeout", cfg.HTTP.ReadTimeout, includeZero)
	putString(httpLayer, "write_timeout", cfg.HTTP.WriteTimeout, includeZero)
	if includeZero || cfg.HTTP.MaxBodyBytes != 0 {
		httpLayer["max_body_bytes"] = cfg.HTTP.MaxBodyBytes
	}
	putSection(layer, "http", httpLayer)

	githubLayer := map[string]any{}
	putString(githubLayer, "client_id", cfg.Auth.GitHub.ClientID, includeZero)
	putString(githubLayer, "client_secret", cfg.Auth.GitHub.ClientSecret, includeZero)
	putString(githubLayer, "scope", cfg.Auth.GitHub.Scope, includeZero)
	putString(githubLayer, "authorize_url", cfg.Auth.GitHub.AuthorizeURL, includeZero)
	putString(githubLayer, "token_url", cfg.Auth.GitHub.TokenURL, includeZero)
	putString(githubLayer, "user_url", cfg.Auth.GitHub.UserURL, includeZero)
	authLayer := map[string]any{}
	putString(authLayer, "jwt_secret", cfg.Auth.JWTSecret, includeZero)
	putString(authLayer, "token_ttl", cfg.Auth.TokenTTL, includeZero)
	putSection(authLayer, "github", githubLayer)
	putSection(layer, "auth", authLayer)

	llmLayer := map[string]any{}
	putString(llmLayer, "api_key", cfg.LLM.APIKey, includeZero)
	putString(llmLayer, "base_url", cfg.LLM.BaseURL, includeZero)
	putString(llmLayer, "timeout", cfg.LLM.Timeout, includeZero)
	putSection(layer, "llm", llmLayer)

	cacheLayer := map[string]any{}
	if includeZero || cfg.Storage.Cache.Enabled {
		cacheLayer["enabled"] = cfg.Storage.Cache.Enabled
	}
	putString(cacheLayer, "ttl", cfg.Storage.Cache.TTL, includeZero)
	storageLayer := map[string]any{}
	putString(storageLayer, "driver", cfg.Storage.Driver, includeZero)
	putString(storageLayer, "dsn", cfg.Storage.DSN, includeZero)
	if includeZero || cfg.Storage.ListPageSize != 0 {
		storageLayer["list_page_size"] = cfg.Storage.ListPageSize
	}
	putSection(storageLayer, "cache", cacheLayer)
	putSection(layer, "storage", storageLayer)

	return layer
}

func putString(layer map[string]any, key string, value string, includeZero bool) {
	if includeZero || strings.TrimSpace(value) != "" {
		layer[key] = value
	}
}

func putSection(layer map[string]any, key string, section map[string]any) {
	if len(section) == 0 {
		return
	}
	layer[key] = section
}
