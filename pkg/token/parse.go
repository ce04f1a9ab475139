package token

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// ParseToken verifies the token's signature and decodes the JSON payload into the generic type.
func ParseToken[T any](token string, secret string) (T, error) {
	var payload T
	if secret == "" {
		return payload, ErrEmptySecret
	}

	payloadEnc, sigEnc, ok := strings.Cut(token, ".")
	if !ok || payloadEnc == "" || sigEnc == "" || strings.Contains(sigEnc, ".") {
		return payload, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}

	sig, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}

	if !hmac.Equal(sig, sign(data, secret)) {
		return payload, ErrSignatureInvalid
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Join(ErrInvalidToken, err)
	}

	return payload, nil
}
