package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-stepgate/core"
	"golang.org/x/sync/errgroup"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// Write is a single entry of a PutMany batch.
type Write struct {
	Key         string
	Body        []byte
	ContentType string
}

type Option func(*Store)

func WithPageSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the entity layer over a core.BlobStore. Saves that touch several
// keys are not atomic; a failure can leave earlier writes in place.
type Store struct {
	blobs    core.BlobStore
	pageSize int
	logger   core.Logger
}

func New(blobs core.BlobStore, opts ...Option) (*Store, error) {
	if blobs == nil {
		return nil, fmt.Errorf("documents: blob store is required")
	}
	store := &Store{blobs: blobs, pageSize: core.DefaultListPageSize}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// PutMany issues every write concurrently and waits for all of them.
func (s *Store) PutMany(ctx context.Context, writes ...Write) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, write := range writes {
		group.Go(func() error {
			if err := s.blobs.Put(groupCtx, write.Key, write.Body, write.ContentType); err != nil {
				return fmt.Errorf("documents: put %s: %w", write.Key, err)
			}
			return nil
		})
	}
	return group.Wait()
}

// DeletePrefix removes every key under prefix, one listed page at a time.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("documents: refusing to delete an empty prefix")
	}
	return s.walk(ctx, prefix, func(page []core.ObjectInfo) error {
		group, groupCtx := errgroup.WithContext(ctx)
		for _, info := range page {
			key := info.Key
			group.Go(func() error {
				if err := s.blobs.Delete(groupCtx, key); err != nil {
					return fmt.Errorf("documents: delete %s: %w", key, err)
				}
				return nil
			})
		}
		return group.Wait()
	})
}

// walk pages through every key under prefix. Only one page is held at a time.
func (s *Store) walk(ctx context.Context, prefix string, visit func(page []core.ObjectInfo) error) error {
	cursor := ""
	for {
		page, err := s.blobs.List(ctx, core.ListOptions{Prefix: prefix, Cursor: cursor, Limit: s.pageSize})
		if err != nil {
			return fmt.Errorf("documents: list %q: %w", prefix, err)
		}
		if len(page.Objects) > 0 {
			if err := visit(page.Objects); err != nil {
				return err
			}
		}
		if !page.Truncated || page.Cursor == "" {
			return nil
		}
		cursor = page.Cursor
	}
}

// getBody returns found=false for absent keys instead of an error.
func (s *Store) getBody(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := s.blobs.Get(ctx, key)
	if errors.Is(err, core.ErrObjectNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("documents: get %s: %w", key, err)
	}
	return obj.Body, true, nil
}

func (s *Store) putJSON(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("documents: encode %s: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, body, ContentTypeJSON); err != nil {
		return fmt.Errorf("documents: put %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key string) error {
	if err := s.blobs.Delete(ctx, key); err != nil {
		return fmt.Errorf("documents: delete %s: %w", key, err)
	}
	return nil
}
