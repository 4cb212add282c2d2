package auth

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTokenTTL applies to tokens issued by login and the GitHub callback.
const DefaultTokenTTL = 24 * time.Hour

// Principal is the payload carried inside gateway tokens.
type Principal struct {
	IssuedAt int64  `json:"iat"`
	ID       string `json:"jti"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewPrincipal stamps iat in unix milliseconds and a random jti.
func NewPrincipal(username string, email string, now time.Time) Principal {
	return Principal{
		IssuedAt: now.UnixMilli(),
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
	}
}
