package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository persists accounts keyed by normalized email.
//
// Implementations return ErrUserNotFound for missing users and
// ErrEmailAlreadyExists when CreateUser hits the unique email constraint.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// TokenStore persists hashed single-use tokens.
//
// SaveToken with revokePrior marks every unconsumed token of the same user and
// purpose as consumed, atomically with the insert.
//
// ConsumeToken is a single conditional write: it succeeds for exactly one
// caller per token. It returns ErrTokenNotFound when no unconsumed token with
// that hash and purpose exists and ErrTokenExpired when one exists but
// now >= ExpiresAt.
type TokenStore interface {
	SaveToken(ctx context.Context, token *Token, revokePrior bool) error
	ConsumeToken(ctx context.Context, purpose Purpose, tokenHash string, now time.Time) (uuid.UUID, error)
}

// ExpiredTokenPurger is implemented by token stores that keep expired rows
// until they are purged explicitly.
type ExpiredTokenPurger interface {
	DeleteExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}
