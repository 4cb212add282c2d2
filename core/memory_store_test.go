package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryBlobStore_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()

	if _, err := store.Get(ctx, "alice/p1/tree.json"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Put(ctx, "alice/p1/tree.json", []byte(`{"rootNode":null}`), ContentTypeJSON); err != nil {
		t.Fatalf("put: %v", err)
	}
	obj, err := store.Get(ctx, "alice/p1/tree.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(obj.Body) != `{"rootNode":null}` || obj.ContentType != ContentTypeJSON {
		t.Fatalf("unexpected object %#v", obj)
	}
	obj.Body[0] = 'X'
	again, _ := store.Get(ctx, "alice/p1/tree.json")
	if again.Body[0] != '{' {
		t.Fatalf("expected stored body to be isolated from callers")
	}

	if err := store.Delete(ctx, "alice/p1/tree.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "alice/p1/tree.json"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
	if err := store.Put(ctx, "", nil, ""); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestMemoryBlobStore_ListPagesInLexicalOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryBlobStore()
	for i := 0; i < 5; i++ {
		if err := store.Put(ctx, fmt.Sprintf("bob/k%d", i), []byte("v"), ""); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	_ = store.Put(ctx, "bobby/other", []byte("v"), "")
	_ = store.Put(ctx, "alice/k0", []byte("v"), "")

	var keys []string
	cursor := ""
	pages := 0
	for {
		page, err := store.List(ctx, ListOptions{Prefix: "bob/", Cursor: cursor, Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		pages++
		for _, info := range page.Objects {
			keys = append(keys, info.Key)
		}
		if !page.Truncated {
			break
		}
		cursor = page.Cursor
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	want := []string{"bob/k0", "bob/k1", "bob/k2", "bob/k3", "bob/k4"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
}

func TestMemoryAccountStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAccountStore()

	if _, err := store.GetByUsername(ctx, "alice"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	created, err := store.Create(ctx, Account{ID: "1", Username: " alice ", Email: "a@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Username != "alice" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected account %#v", created)
	}
	if _, err := store.Create(ctx, Account{Username: "alice"}); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	loaded, err := store.GetByUsername(ctx, "alice")
	if err != nil || loaded.Email != "a@example.com" {
		t.Fatalf("unexpected lookup %#v err=%v", loaded, err)
	}
}
