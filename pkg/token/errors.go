package token

import "errors"

var (
	ErrInvalidToken     = errors.New("token: malformed")
	ErrSignatureInvalid = errors.New("token: signature mismatch")
	ErrEmptySecret      = errors.New("token: empty signing secret")
)
