package sqlstore

import (
	"fmt"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-stepgate/core"
	"github.com/uptrace/bun"
)

type FactoryOption func(*RepositoryFactory)

// WithCacheService puts a read-through cache in front of blob reads.
func WithCacheService(cacheService repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cacheService = cacheService
	}
}

// WithCacheTTL builds a default cache service with ttl when no service was
// supplied. A zero ttl leaves the cache off.
func WithCacheTTL(ttl time.Duration) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cacheTTL = ttl
	}
}

func WithListPageSize(size int) FactoryOption {
	return func(f *RepositoryFactory) {
		if size > 0 {
			f.pageSize = size
		}
	}
}

type RepositoryFactory struct {
	db           *bun.DB
	cacheService repositorycache.CacheService
	cacheTTL     time.Duration
	pageSize     int

	blobStore    core.BlobStore
	accountStore *AccountStore
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{pageSize: core.DefaultListPageSize}
	for _, opt := range opts {
		if opt != nil {
			opt(factory)
		}
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.blobStore != nil && f.accountStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) BlobStore() core.BlobStore {
	if f == nil {
		return nil
	}
	return f.blobStore
}

func (f *RepositoryFactory) AccountStore() core.AccountStore {
	if f == nil || f.accountStore == nil {
		return nil
	}
	return f.accountStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	blobStore, err := NewBlobStore(f.db)
	if err != nil {
		return err
	}
	blobStore.pageSize = f.pageSize
	f.blobStore = blobStore

	if f.cacheService == nil && f.cacheTTL > 0 {
		config := repositorycache.DefaultConfig()
		config.TTL = f.cacheTTL
		cacheService, err := repositorycache.NewCacheService(config)
		if err != nil {
			return fmt.Errorf("sqlstore: build blob cache: %w", err)
		}
		f.cacheService = cacheService
	}
	if f.cacheService != nil {
		cached, err := NewCachedBlobStore(blobStore, f.cacheService)
		if err != nil {
			return err
		}
		f.blobStore = cached
	}

	accountStore, err := NewAccountStore(f.db)
	if err != nil {
		return err
	}
	f.accountStore = accountStore
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
