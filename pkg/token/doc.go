// Package token provides compact, signed tokens for embedding JSON payloads
// in links that are delivered to users, such as email verification and
// password reset links.
//
// Token format: base64url(payload).base64url(HMAC-SHA256(payload))
//
// A signed token proves that the server issued it but says nothing about
// whether it was already used. Callers that need single-use semantics store
// Hash(token) and consume the stored record; the raw token is never persisted.
//
// # Usage
//
//	import "github.com/dmitrymomot/emailauth/pkg/token"
//
//	type Payload struct {
//	    Nonce   string `json:"n"`
//	    Purpose string `json:"p"`
//	}
//
//	nonce, err := token.Nonce(32)
//	if err != nil {
//	    return err
//	}
//
//	tok, err := token.GenerateToken(Payload{Nonce: nonce, Purpose: "reset"}, secret)
//	if err != nil {
//	    return err
//	}
//
//	p, err := token.ParseToken[Payload](tok, secret)
//	if err != nil {
//	    // ErrInvalidToken, ErrSignatureInvalid or ErrEmptySecret
//	}
//
//	storedHash := token.Hash(tok)
package token
