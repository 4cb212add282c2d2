package stepgate

import "github.com/goliatone/go-stepgate/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type Response = core.Response

type BlobStore = core.BlobStore
type AccountStore = core.AccountStore
type StoreFactory = core.StoreFactory
type StoreProvider = core.StoreProvider
type ConfigProvider = core.ConfigProvider
type RawConfigLoader = core.RawConfigLoader
type MetricsRecorder = core.MetricsRecorder
type HTTPDoer = core.HTTPDoer

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithPersistenceClient = core.WithPersistenceClient
	WithStoreFactory      = core.WithStoreFactory
	WithBlobStore         = core.WithBlobStore
	WithAccountStore      = core.WithAccountStore
	WithHTTPClient        = core.WithHTTPClient
	WithClock             = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewRuntime(cfg Config, opts ...Option) (*core.Runtime, error) {
	return core.NewRuntime(cfg, opts...)
}
