package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-stepgate/core"
)

const blobCacheKeyPrefix = "stepgate::blob::v1"

// CachedBlobStore serves Get from a read-through cache and drops the cached
// entry after every write or delete of the key. A Get whose fetch overlapped
// any write drops the entry it filled, so a body read before the write never
// outlives it in the cache. Listings always hit the base store.
type CachedBlobStore struct {
	base   core.BlobStore
	cache  repositorycache.CacheService
	writes atomic.Uint64
}

func NewCachedBlobStore(base core.BlobStore, cacheService repositorycache.CacheService) (*CachedBlobStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base blob store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: blob cache service is required")
	}
	return &CachedBlobStore{base: base, cache: cacheService}, nil
}

// BlobCacheKey is stepgate::blob::v1::<key> with the object key path escaped.
func BlobCacheKey(key string) string {
	return blobCacheKeyPrefix + "::" + url.PathEscape(key)
}

func (s *CachedBlobStore) Get(ctx context.Context, key string) (core.Object, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Object{}, fmt.Errorf("sqlstore: cached blob store is not configured")
	}
	cacheKey := BlobCacheKey(key)
	before := s.writes.Load()
	obj, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Object, error) {
		fetched, fetchErr := s.base.Get(ctx, key)
		if fetchErr != nil {
			return core.Object{}, fetchErr
		}
		return cloneObject(fetched), nil
	})
	if err != nil {
		return core.Object{}, err
	}
	if s.writes.Load() != before {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			return core.Object{}, err
		}
	}
	return cloneObject(obj), nil
}

func (s *CachedBlobStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached blob store is not configured")
	}
	if err := s.base.Put(ctx, key, body, contentType); err != nil {
		return err
	}
	s.writes.Add(1)
	return s.cache.Delete(ctx, BlobCacheKey(key))
}

func (s *CachedBlobStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached blob store is not configured")
	}
	if err := s.base.Delete(ctx, key); err != nil {
		return err
	}
	s.writes.Add(1)
	return s.cache.Delete(ctx, BlobCacheKey(key))
}

func (s *CachedBlobStore) List(ctx context.Context, opts core.ListOptions) (core.ListPage, error) {
	if s == nil || s.base == nil {
		return core.ListPage{}, fmt.Errorf("sqlstore: cached blob store is not configured")
	}
	return s.base.List(ctx, opts)
}

func cloneObject(obj core.Object) core.Object {
	cloned := obj
	cloned.Body = append([]byte(nil), obj.Body...)
	return cloned
}
