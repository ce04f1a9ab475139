package auth

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errDuplicateTokenHash = errors.New("token hash already stored")

var (
	_ UserRepository     = (*MemoryStorage)(nil)
	_ TokenStore         = (*MemoryStorage)(nil)
	_ ExpiredTokenPurger = (*MemoryStorage)(nil)
)

// MemoryStorage implements UserRepository and TokenStore in process memory.
// Suitable for tests and single-instance development servers.
type MemoryStorage struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	tokens  map[string]*Token
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:   make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		tokens:  make(map[string]*Token),
	}
}

func (s *MemoryStorage) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *MemoryStorage) CreateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return ErrEmailAlreadyExists
	}
	s.users[user.ID] = cloneUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStorage) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *MemoryStorage) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsEmailVerified = true
	return nil
}

func (s *MemoryStorage) SaveToken(_ context.Context, token *Token, revokePrior bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token.TokenHash]; ok {
		return errDuplicateTokenHash
	}

	if revokePrior {
		revokedAt := token.IssuedAt
		for _, t := range s.tokens {
			if t.UserID == token.UserID && t.Purpose == token.Purpose && t.ConsumedAt == nil {
				t.ConsumedAt = &revokedAt
			}
		}
	}

	stored := *token
	stored.ConsumedAt = nil
	s.tokens[token.TokenHash] = &stored
	return nil
}

func (s *MemoryStorage) ConsumeToken(_ context.Context, purpose Purpose, tokenHash string, now time.Time) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenHash]
	if !ok || t.Purpose != purpose || t.ConsumedAt != nil {
		return uuid.Nil, ErrTokenNotFound
	}
	if !t.Usable(now) {
		return uuid.Nil, ErrTokenExpired
	}

	consumedAt := now
	t.ConsumedAt = &consumedAt
	return t.UserID, nil
}

// DeleteExpiredTokens drops tokens that expired before cutoff and returns how many were removed.
func (s *MemoryStorage) DeleteExpiredTokens(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, t := range s.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(s.tokens, hash)
			n++
		}
	}
	return n, nil
}

func cloneUser(u *User) *User {
	c := *u
	if u.ExtraFields != nil {
		c.ExtraFields = maps.Clone(u.ExtraFields)
	}
	return &c
}
