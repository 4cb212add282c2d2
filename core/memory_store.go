package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	body        []byte
	contentType string
	updatedAt   time.Time
}

// MemoryBlobStore keeps objects in process. It backs the memory storage
// driver and most tests.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: map[string]memoryObject{}}
}

func (s *MemoryBlobStore) Get(_ context.Context, key string) (Object, error) {
	if s == nil {
		return Object{}, fmt.Errorf("core: memory blob store is not configured")
	}
	if key == "" {
		return Object{}, fmt.Errorf("core: object key is required")
	}
	s.mu.RLock()
	stored, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return Object{}, ErrObjectNotFound
	}
	return Object{
		Key:         key,
		Body:        append([]byte(nil), stored.body...),
		ContentType: stored.contentType,
		UpdatedAt:   stored.updatedAt,
	}, nil
}

func (s *MemoryBlobStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	if s == nil {
		return fmt.Errorf("core: memory blob store is not configured")
	}
	if key == "" {
		return fmt.Errorf("core: object key is required")
	}
	s.mu.Lock()
	s.objects[key] = memoryObject{
		body:        append([]byte(nil), body...),
		contentType: strings.TrimSpace(contentType),
		updatedAt:   time.Now().UTC(),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryBlobStore) Delete(_ context.Context, key string) error {
	if s == nil {
		return fmt.Errorf("core: memory blob store is not configured")
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryBlobStore) List(_ context.Context, opts ListOptions) (ListPage, error) {
	if s == nil {
		return ListPage{}, fmt.Errorf("core: memory blob store is not configured")
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListPageSize
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		if opts.Cursor != "" && key <= opts.Cursor {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	page := ListPage{}
	if len(keys) > limit {
		keys = keys[:limit]
		page.Truncated = true
	}
	page.Objects = make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		stored := s.objects[key]
		page.Objects = append(page.Objects, ObjectInfo{
			Key:         key,
			Size:        int64(len(stored.body)),
			ContentType: stored.contentType,
			UpdatedAt:   stored.updatedAt,
		})
	}
	s.mu.RUnlock()

	if page.Truncated && len(keys) > 0 {
		page.Cursor = keys[len(keys)-1]
	}
	return page, nil
}

type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: map[string]Account{}}
}

func (s *MemoryAccountStore) Create(_ context.Context, account Account) (Account, error) {
	if s == nil {
		return Account{}, fmt.Errorf("core: memory account store is not configured")
	}
	username := strings.TrimSpace(account.Username)
	if username == "" {
		return Account{}, fmt.Errorf("core: account username is required")
	}
	account.Username = username
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[username]; exists {
		return Account{}, ErrAccountExists
	}
	s.accounts[username] = account
	return account, nil
}

func (s *MemoryAccountStore) GetByUsername(_ context.Context, username string) (Account, error) {
	if s == nil {
		return Account{}, fmt.Errorf("core: memory account store is not configured")
	}
	s.mu.RLock()
	account, ok := s.accounts[strings.TrimSpace(username)]
	s.mu.RUnlock()
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

var (
	_ BlobStore    = (*MemoryBlobStore)(nil)
	_ AccountStore = (*MemoryAccountStore)(nil)
)
