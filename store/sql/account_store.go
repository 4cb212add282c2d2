package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-stepgate/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AccountStore struct {
	db   *bun.DB
	repo repository.Repository[*accountRecord]
}

func NewAccountStore(db *bun.DB) (*AccountStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*accountRecord](db, accountHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account repository wiring: %w", err)
		}
	}
	return &AccountStore{db: db, repo: repo}, nil
}

// Create reports core.ErrAccountExists when the username is taken, either
// by the lookup or by the unique index when two signups race.
func (s *AccountStore) Create(ctx context.Context, account core.Account) (core.Account, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	account.Username = strings.TrimSpace(account.Username)
	if account.Username == "" {
		return core.Account{}, fmt.Errorf("sqlstore: account username is required")
	}
	if strings.TrimSpace(account.ID) == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	if _, err := s.GetByUsername(ctx, account.Username); err == nil {
		return core.Account{}, core.ErrAccountExists
	} else if !errors.Is(err, core.ErrAccountNotFound) {
		return core.Account{}, err
	}

	created, err := s.repo.Create(ctx, newAccountRecord(account))
	if err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, core.ErrAccountExists
		}
		return core.Account{}, err
	}
	return created.toDomain(), nil
}

func (s *AccountStore) GetByUsername(ctx context.Context, username string) (core.Account, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("username", "=", strings.TrimSpace(username)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Account{}, err
	}
	if len(records) == 0 {
		return core.Account{}, core.ErrAccountNotFound
	}
	return records[0].toDomain(), nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
