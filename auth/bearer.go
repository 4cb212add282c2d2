package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-stepgate/core"
)

const InvalidTokenMessage = "Invalid token"

// Authenticator resolves the caller of a request from its Authorization
// header.
type Authenticator struct {
	codec *TokenCodec
	ttl   time.Duration
	now   func() time.Time
}

func NewAuthenticator(codec *TokenCodec, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now
	if codec != nil && codec.now != nil {
		now = codec.now
	}
	return &Authenticator{codec: codec, ttl: ttl, now: now}
}

// BearerToken returns the second space separated field of header, so both
// "Bearer <token>" and any other single-word scheme are accepted.
func BearerToken(header string) string {
	fields := strings.Split(header, " ")
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// ValidUsername reports whether name can own documents. Owners are the first
// segment of every document key, so a name may not contain "/".
func ValidUsername(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.Contains(name, "/")
}

// Authenticate fails with a 401 "Invalid token" error for a missing header
// and for every token the codec rejects.
func (a *Authenticator) Authenticate(r *http.Request) (Principal, error) {
	if a == nil || a.codec == nil || r == nil {
		return Principal{}, core.Unauthorized(InvalidTokenMessage)
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return Principal{}, core.Unauthorized(InvalidTokenMessage)
	}
	var principal Principal
	if err := a.codec.VerifyInto(BearerToken(header), &principal); err != nil {
		return Principal{}, core.Unauthorized(InvalidTokenMessage)
	}
	if !ValidUsername(principal.Username) {
		return Principal{}, core.Unauthorized(InvalidTokenMessage)
	}
	return principal, nil
}

// IssueFor creates a fresh principal for username and signs it.
func (a *Authenticator) IssueFor(username string, email string) (string, error) {
	if a == nil || a.codec == nil {
		return "", fmt.Errorf("auth: authenticator is not configured")
	}
	return a.codec.Issue(NewPrincipal(username, email, a.now()), a.ttl)
}
