package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/emailauth/pkg/token"
)

const nonceSize = 32

// tokenPayload is the signed body of a raw link token.
type tokenPayload struct {
	Nonce   string  `json:"n"`
	Purpose Purpose `json:"p"`
}

// TokenService issues and consumes single-use, time-limited link tokens.
//
// A raw token is a random nonce wrapped in an HMAC-signed envelope that binds
// its purpose. Only the SHA-256 hash of the raw token is stored. Tokens that
// fail the signature check never reach the store.
type TokenService struct {
	store     TokenStore
	secret    string
	now       func() time.Time
	keepPrior bool
}

type TokenOption func(*TokenService)

// WithClock overrides time.Now. Used in tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// WithKeepPriorTokens keeps earlier unconsumed tokens valid when a new one is issued.
// By default issuing a token revokes prior tokens of the same purpose for that user.
func WithKeepPriorTokens() TokenOption {
	return func(s *TokenService) {
		s.keepPrior = true
	}
}

func NewTokenService(store TokenStore, secret string, opts ...TokenOption) (*TokenService, error) {
	if store == nil {
		return nil, ErrMissingStorage
	}
	if secret == "" {
		return nil, ErrMissingTokenSecret
	}

	s := &TokenService{
		store:  store,
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a token for userID and returns the raw value. The raw value is
// not kept anywhere and must be delivered to the user right away.
func (s *TokenService) Issue(ctx context.Context, purpose Purpose, userID uuid.UUID, ttl time.Duration) (string, error) {
	if !purpose.Valid() {
		return "", fmt.Errorf("%w: unknown token purpose %q", ErrInvalidConfig, purpose)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: token ttl must be positive", ErrInvalidConfig)
	}

	nonce, err := token.Nonce(nonceSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate token nonce: %w", err)
	}

	raw, err := token.GenerateToken(tokenPayload{Nonce: nonce, Purpose: purpose}, s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	now := s.now()
	t := &Token{
		ID:        uuid.New(),
		Purpose:   purpose,
		UserID:    userID,
		TokenHash: token.Hash(raw),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.store.SaveToken(ctx, t, !s.keepPrior); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return raw, nil
}

// Consume marks the token as used and returns its user.
// Forged, malformed, unknown, already used and wrong-purpose tokens all yield
// ErrTokenNotFound; ErrTokenExpired is returned for a valid token past its TTL.
func (s *TokenService) Consume(ctx context.Context, purpose Purpose, raw string) (uuid.UUID, error) {
	payload, err := token.ParseToken[tokenPayload](raw, s.secret)
	if err != nil {
		return uuid.Nil, errors.Join(ErrTokenNotFound, err)
	}
	if payload.Purpose != purpose {
		return uuid.Nil, ErrTokenNotFound
	}

	userID, err := s.store.ConsumeToken(ctx, purpose, token.Hash(raw), s.now())
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}
