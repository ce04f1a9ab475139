package auth

import (
	"time"

	"github.com/google/uuid"
)

// Purpose binds a token to the flow that issued it.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify-email"
	PurposeResetPassword Purpose = "reset-password"
)

func (p Purpose) String() string { return string(p) }

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	return p == PurposeVerifyEmail || p == PurposeResetPassword
}

// User is an email/password account.
type User struct {
	ID              uuid.UUID      `json:"id"`
	Email           string         `json:"email"`
	PasswordHash    string         `json:"-"`
	IsEmailVerified bool           `json:"is_email_verified"`
	ExtraFields     map[string]any `json:"extra_fields,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Token is the stored side of a single-use link token.
// The raw token is never persisted, only its hash.
type Token struct {
	ID         uuid.UUID
	Purpose    Purpose
	UserID     uuid.UUID
	TokenHash  string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// Usable reports whether the token can still be consumed at now.
func (t *Token) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
