package sqlstore

import (
	"time"

	"github.com/goliatone/go-stepgate/core"
	"github.com/uptrace/bun"
)

type blobRecord struct {
	bun.BaseModel `bun:"table:gateway_blobs,alias:gb"`

	Key         string    `bun:"object_key,pk"`
	Body        []byte    `bun:"body,notnull"`
	ContentType string    `bun:"content_type,notnull"`
	Size        int64     `bun:"size,scanonly"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *blobRecord) toObject() core.Object {
	return core.Object{
		Key:         r.Key,
		Body:        append([]byte(nil), r.Body...),
		ContentType: r.ContentType,
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r *blobRecord) toInfo() core.ObjectInfo {
	return core.ObjectInfo{
		Key:         r.Key,
		Size:        r.Size,
		ContentType: r.ContentType,
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type accountRecord struct {
	bun.BaseModel `bun:"table:gateway_accounts,alias:ga"`

	ID           string    `bun:"id,pk"`
	Username     string    `bun:"username,notnull,unique"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newAccountRecord(account core.Account) *accountRecord {
	return &accountRecord{
		ID:           account.ID,
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt.UTC(),
	}
}

func (r *accountRecord) toDomain() core.Account {
	if r == nil {
		return core.Account{}
	}
	return core.Account{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
