package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenerateToken JSON encodes the payload and appends a full HMAC-SHA256 signature.
func GenerateToken[T any](payload T, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(data)
	sigEnc := base64.RawURLEncoding.EncodeToString(sign(data, secret))

	return payloadEnc + "." + sigEnc, nil
}

// Nonce returns size random bytes encoded as base64url.
func Nonce(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("%w: nonce size must be positive", ErrInvalidToken)
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash returns the hex-encoded SHA-256 digest of a token.
// Only this value is meant to be stored.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sign(data []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return h.Sum(nil)
}
