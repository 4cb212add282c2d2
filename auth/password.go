package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashSHA256Hex is the digest legacy accounts were stored with.
func HashSHA256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// bcryptInput digests password so bcrypt always sees 44 bytes, under its
// 72 byte limit.
func bcryptInput(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("auth: password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword accepts bcrypt hashes and legacy SHA-256 hex digests.
func VerifyPassword(hashed string, password string) bool {
	if hashed == "" {
		return false
	}
	if strings.HasPrefix(hashed, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(hashed), bcryptInput(password)) == nil
	}
	legacy := HashSHA256Hex(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(hashed)), []byte(legacy)) == 1
}
