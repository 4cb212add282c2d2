package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for every verification failure. Malformed,
// forged and expired tokens are indistinguishable to callers.
var ErrInvalidToken = errors.New("auth: invalid token")

// tokenEnvelope is the signed claims body: the caller payload plus an
// optional expiry in unix seconds. A null or zero exp never expires.
type tokenEnvelope struct {
	Payload json.RawMessage `json:"payload"`
	Exp     *int64          `json:"exp"`
}

// Valid is a no-op; expiry is checked by the codec against its own clock.
func (tokenEnvelope) Valid() error { return nil }

type TokenCodecOption func(*TokenCodec)

func WithNow(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// TokenCodec signs payloads with HMAC-SHA256 into header.payload.signature
// tokens and verifies them.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenCodec(secret string, opts ...TokenCodecOption) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth: token signing secret is required")
	}
	codec := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(codec)
		}
	}
	return codec, nil
}

// Issue signs payload. A ttl of zero produces a token without expiry; any
// positive ttl is rounded up to whole seconds.
func (c *TokenCodec) Issue(payload any, ttl time.Duration) (string, error) {
	if c == nil {
		return "", fmt.Errorf("auth: token codec is not configured")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("auth: marshal token payload: %w", err)
	}
	envelope := tokenEnvelope{Payload: raw}
	if ttl > 0 {
		seconds := int64((ttl + time.Second - 1) / time.Second)
		exp := c.now().Unix() + seconds
		envelope.Exp = &exp
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, envelope).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the raw payload.
func (c *TokenCodec) Verify(token string) (json.RawMessage, error) {
	if c == nil {
		return nil, ErrInvalidToken
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrInvalidToken
	}

	envelope := &tokenEnvelope{}
	parsed, err := c.parser.ParseWithClaims(token, envelope, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if envelope.Exp != nil && *envelope.Exp != 0 && *envelope.Exp < c.now().Unix() {
		return nil, ErrInvalidToken
	}
	payload := bytes.TrimSpace(envelope.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, ErrInvalidToken
	}
	return json.RawMessage(payload), nil
}

// VerifyInto verifies token and decodes its payload into dst.
func (c *TokenCodec) VerifyInto(token string, dst any) error {
	payload, err := c.Verify(token)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return ErrInvalidToken
	}
	return nil
}
