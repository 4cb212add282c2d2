package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
	"github.com/goliatone/go-stepgate/documents"
)

func newTestDocuments(t *testing.T) *documents.Store {
	t.Helper()
	store, err := documents.New(core.NewMemoryBlobStore())
	if err != nil {
		t.Fatalf("new documents store: %v", err)
	}
	return store
}

func TestLoadStepTreeQuery(t *testing.T) {
	docs := newTestDocuments(t)
	ctx := context.Background()
	q := NewLoadStepTreeQuery(docs)

	out, err := q.Query(ctx, LoadStepTreeMessage{Owner: "alice", ProblemID: "p1"})
	if err != nil {
		t.Fatalf("load missing step tree: %v", err)
	}
	if out.Found {
		t.Fatalf("expected missing step tree")
	}

	if err := docs.SaveStepTree(ctx, "alice", "p1", json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatalf("save step tree: %v", err)
	}
	out, err = q.Query(ctx, LoadStepTreeMessage{Owner: "alice", ProblemID: "p1"})
	if err != nil {
		t.Fatalf("load step tree: %v", err)
	}
	if !out.Found || string(out.Body) != `{"root":{"a":1}}` {
		t.Fatalf("unexpected step tree: %#v", out)
	}
}

func TestLoadAbstractionQuery_DefaultsToEmptyList(t *testing.T) {
	out, err := NewLoadAbstractionQuery(newTestDocuments(t)).Query(context.Background(), LoadAbstractionMessage{
		Owner: "alice", ProblemID: "p1",
	})
	if err != nil {
		t.Fatalf("load abstraction: %v", err)
	}
	if string(out) != "[]" {
		t.Fatalf("expected empty list, got %s", out)
	}
}

func TestLoadCustomProblemQuery_MissingIsNotFound(t *testing.T) {
	_, err := NewLoadCustomProblemQuery(newTestDocuments(t)).Query(context.Background(), LoadCustomProblemMessage{
		Owner: "alice", ID: "nope",
	})
	richErr, ok := core.ClientError(err)
	if !ok || richErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestLoadProblemQuery_MissingTreeIsServerError(t *testing.T) {
	_, err := NewLoadProblemQuery(newTestDocuments(t)).Query(context.Background(), LoadProblemMessage{
		Owner: "alice", ProblemID: "p1",
	})
	if err == nil {
		t.Fatalf("expected error for missing tree")
	}
	if _, ok := core.ClientError(err); ok {
		t.Fatalf("missing tree must not be a client error")
	}
	if !errors.Is(err, documents.ErrProblemTreeNotFound) {
		t.Fatalf("expected tree not found cause, got %v", err)
	}
}

func TestQueries_ValidateMessages(t *testing.T) {
	docs := newTestDocuments(t)
	cases := []struct {
		name string
		run  func() error
	}{
		{"step tree problem", func() error {
			_, err := NewLoadStepTreeQuery(docs).Query(context.Background(), LoadStepTreeMessage{Owner: "alice"})
			return err
		}},
		{"abstraction steps id", func() error {
			_, err := NewLoadAbstractionStepsQuery(docs).Query(context.Background(), LoadAbstractionStepsMessage{Owner: "alice", ProblemID: "p1"})
			return err
		}},
		{"history node", func() error {
			_, err := NewFileHistoryQuery(docs).Query(context.Background(), FileHistoryMessage{Owner: "alice", ProblemID: "p1"})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			richErr, ok := core.ClientError(tc.run())
			if !ok || richErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 validation error, got %#v", richErr)
			}
		})
	}
}

func TestQueries_RequireDependencies(t *testing.T) {
	if _, err := NewListReviewsQuery(nil).Query(context.Background(), ListReviewsMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
	if _, err := NewAuthenticateCredentialsQuery(nil).Query(context.Background(), AuthenticateCredentialsMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
}

func TestAuthenticateCredentialsQuery(t *testing.T) {
	accounts := core.NewMemoryAccountStore()
	hashed, err := auth.HashPassword("p1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	ctx := context.Background()
	if _, err := accounts.Create(ctx, core.Account{ID: "a1", Username: "u1", PasswordHash: hashed}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := accounts.Create(ctx, core.Account{ID: "a2", Username: "legacy", PasswordHash: auth.HashSHA256Hex("old")}); err != nil {
		t.Fatalf("create legacy account: %v", err)
	}
	q := NewAuthenticateCredentialsQuery(accounts)

	account, err := q.Query(ctx, AuthenticateCredentialsMessage{Username: "u1", Password: "p1"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if account.ID != "a1" {
		t.Fatalf("unexpected account %#v", account)
	}
	if _, err := q.Query(ctx, AuthenticateCredentialsMessage{Username: "legacy", Password: "old"}); err != nil {
		t.Fatalf("authenticate legacy hash: %v", err)
	}

	for _, msg := range []AuthenticateCredentialsMessage{
		{Username: "u1", Password: "wrong"},
		{Username: "ghost", Password: "p1"},
		{Username: "", Password: "p1"},
	} {
		_, err := q.Query(ctx, msg)
		richErr, ok := core.ClientError(err)
		if !ok || richErr.Code != http.StatusBadRequest || richErr.Message != InvalidCredentialsMessage {
			t.Fatalf("expected invalid credentials for %q, got %v", msg.Username, err)
		}
	}
}

func TestAuthenticateCredentialsQuery_StoreFailure(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewAuthenticateCredentialsQuery(failingAccountStore{err: boom}).Query(context.Background(), AuthenticateCredentialsMessage{
		Username: "u1", Password: "p1",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if _, ok := core.ClientError(err); ok {
		t.Fatalf("store failure must not be a client error")
	}
}

type failingAccountStore struct {
	err error
}

func (s failingAccountStore) Create(context.Context, core.Account) (core.Account, error) {
	return core.Account{}, s.err
}

func (s failingAccountStore) GetByUsername(context.Context, string) (core.Account, error) {
	return core.Account{}, s.err
}
