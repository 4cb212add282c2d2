package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Runtime carries the resolved configuration and shared collaborators every
// gateway service is built from.
type Runtime struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	blobStore       BlobStore
	accountStore    AccountStore
	httpClient      HTTPDoer
	now             func() time.Time
}

func NewRuntime(cfg Config, opts ...Option) (*Runtime, error) {
	builder := defaultRuntimeBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("stepgate", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("stepgate"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = gatewayErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = time.Now
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.blobStore == nil || builder.accountStore == nil) && builder.storeFactory != nil {
		var stores StoreProvider
		switch factory := builder.storeFactory.(type) {
		case StoreFactory:
			built, buildErr := factory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			stores = built
		case StoreProvider:
			stores = factory
		default:
			return nil, fmt.Errorf("core: unsupported store factory type %T", builder.storeFactory)
		}
		if stores != nil {
			if builder.blobStore == nil {
				builder.blobStore = stores.BlobStore()
			}
			if builder.accountStore == nil {
				builder.accountStore = stores.AccountStore()
			}
		}
	}
	if builder.blobStore == nil || builder.accountStore == nil {
		if finalConfig.StorageDriver() != StorageDriverMemory {
			return nil, fmt.Errorf("core: storage driver %q requires a store factory", finalConfig.StorageDriver())
		}
		if builder.blobStore == nil {
			builder.blobStore = NewMemoryBlobStore()
		}
		if builder.accountStore == nil {
			builder.accountStore = NewMemoryAccountStore()
		}
	}
	if builder.httpClient == nil {
		builder.httpClient = &http.Client{Timeout: finalConfig.LLMTimeout()}
	}

	return &Runtime{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		blobStore:       builder.blobStore,
		accountStore:    builder.accountStore,
		httpClient:      builder.httpClient,
		now:             builder.now,
	}, nil
}

func (r *Runtime) Config() Config {
	if r == nil {
		return Config{}
	}
	return r.config
}

func (r *Runtime) Logger(name string) Logger {
	if r == nil {
		return nopLogger()
	}
	if r.loggerProvider != nil && name != "" {
		if named := r.loggerProvider.GetLogger(name); named != nil {
			return named
		}
	}
	return r.logger
}

func (r *Runtime) MetricsRecorder() MetricsRecorder {
	if r == nil || r.metricsRecorder == nil {
		return NopMetricsRecorder{}
	}
	return r.metricsRecorder
}

func (r *Runtime) ErrorMapper() ErrorMapper {
	if r == nil || r.errorMapper == nil {
		return gatewayErrorMapper
	}
	return r.errorMapper
}

func (r *Runtime) BlobStore() BlobStore {
	if r == nil {
		return nil
	}
	return r.blobStore
}

func (r *Runtime) AccountStore() AccountStore {
	if r == nil {
		return nil
	}
	return r.accountStore
}

func (r *Runtime) HTTPClient() HTTPDoer {
	if r == nil {
		return nil
	}
	return r.httpClient
}

func (r *Runtime) Now() time.Time {
	if r == nil || r.now == nil {
		return time.Now()
	}
	return r.now()
}

func (r *Runtime) Clock() func() time.Time {
	if r == nil || r.now == nil {
		return time.Now
	}
	return r.now
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
