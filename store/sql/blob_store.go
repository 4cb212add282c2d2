package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-stepgate/core"
	"github.com/uptrace/bun"
)

// BlobStore keeps objects in the gateway_blobs table. Keys compare
// byte-wise on both dialects, so List pages in the same order as the
// in-memory store.
type BlobStore struct {
	db       *bun.DB
	pageSize int
	now      func() time.Time
}

func NewBlobStore(db *bun.DB) (*BlobStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &BlobStore{db: db, pageSize: core.DefaultListPageSize, now: time.Now}, nil
}

func (s *BlobStore) Get(ctx context.Context, key string) (core.Object, error) {
	if s == nil || s.db == nil {
		return core.Object{}, fmt.Errorf("sqlstore: blob store is not configured")
	}
	if key == "" {
		return core.Object{}, fmt.Errorf("sqlstore: object key is required")
	}
	record := &blobRecord{}
	err := s.db.NewSelect().
		Model(record).
		Column("object_key", "body", "content_type", "updated_at").
		Where("?TableAlias.object_key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Object{}, core.ErrObjectNotFound
	}
	if err != nil {
		return core.Object{}, err
	}
	return record.toObject(), nil
}

func (s *BlobStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: blob store is not configured")
	}
	if key == "" {
		return fmt.Errorf("sqlstore: object key is required")
	}
	if body == nil {
		body = []byte{}
	}
	record := &blobRecord{
		Key:         key,
		Body:        body,
		ContentType: strings.TrimSpace(contentType),
		UpdatedAt:   s.now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (object_key) DO UPDATE").
		Set("body = EXCLUDED.body").
		Set("content_type = EXCLUDED.content_type").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: blob store is not configured")
	}
	if key == "" {
		return fmt.Errorf("sqlstore: object key is required")
	}
	_, err := s.db.NewDelete().
		Model((*blobRecord)(nil)).
		Where("object_key = ?", key).
		Exec(ctx)
	return err
}

func (s *BlobStore) List(ctx context.Context, opts core.ListOptions) (core.ListPage, error) {
	if s == nil || s.db == nil {
		return core.ListPage{}, fmt.Errorf("sqlstore: blob store is not configured")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.pageSize
	}

	records := []*blobRecord{}
	query := s.db.NewSelect().
		Model(&records).
		Column("object_key", "content_type", "updated_at").
		ColumnExpr("LENGTH(?TableAlias.body) AS size")
	if opts.Prefix != "" {
		query = query.Where("SUBSTR(?TableAlias.object_key, 1, ?) = ?", utf8.RuneCountInString(opts.Prefix), opts.Prefix)
	}
	if opts.Cursor != "" {
		query = query.Where("?TableAlias.object_key > ?", opts.Cursor)
	}
	err := query.
		OrderExpr("?TableAlias.object_key ASC").
		Limit(limit + 1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.ListPage{}, err
	}

	page := core.ListPage{}
	if len(records) > limit {
		records = records[:limit]
		page.Truncated = true
	}
	page.Objects = make([]core.ObjectInfo, 0, len(records))
	for _, record := range records {
		page.Objects = append(page.Objects, record.toInfo())
	}
	if page.Truncated && len(page.Objects) > 0 {
		page.Cursor = page.Objects[len(page.Objects)-1].Key
	}
	return page, nil
}
