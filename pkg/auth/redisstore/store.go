// Package redisstore implements auth.UserRepository and auth.TokenStore on Redis.
//
// Every write that must be atomic runs as a single Lua script. Token keys
// expire on their own some time after the token itself, so no purge job is
// needed.
//
// All keys start with the namespace in a hash tag, "{auth}:" by default, so
// on Redis Cluster they map to a single slot. The token scripts touch keys
// they derive at run time and rely on that.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/emailauth/pkg/auth"
)

const (
	defaultNamespace = "auth"
	defaultRetention = time.Hour
)

var ErrDuplicateTokenHash = errors.New("token hash already stored")

type Store struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

var (
	_ auth.UserRepository = (*Store)(nil)
	_ auth.TokenStore     = (*Store)(nil)
)

type Option func(*Store)

// WithNamespace sets the hash tag every key starts with. Default "auth".
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.prefix = keyPrefix(ns)
		}
	}
}

func keyPrefix(ns string) string { return "{" + ns + "}:" }

// WithExpiredRetention sets how long a token key outlives the token, so late
// attempts are reported as expired rather than unknown. Default one hour.
func WithExpiredRetention(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.retention = d
		}
	}
}

func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:    client,
		prefix:    keyPrefix(defaultNamespace),
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) emailKey(email string) string { return s.prefix + "user-email:" + email }
func (s *Store) userKey(id string) string     { return s.prefix + "user:" + id }
func (s *Store) tokenPrefix() string          { return s.prefix + "token:" }
func (s *Store) activeKey(userID uuid.UUID, p auth.Purpose) string {
	return s.prefix + "active:" + userID.String() + ":" + string(p)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	id, err := s.client.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.getUser(ctx, id)
}

func (s *Store) getUser(ctx context.Context, id string) (*auth.User, error) {
	fields, err := s.client.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if len(fields) == 0 {
		return nil, auth.ErrUserNotFound
	}
	return decodeUser(fields)
}

func (s *Store) CreateUser(ctx context.Context, user *auth.User) error {
	extra := []byte("{}")
	if len(user.ExtraFields) > 0 {
		var err error
		if extra, err = json.Marshal(user.ExtraFields); err != nil {
			return fmt.Errorf("failed to encode user extra fields: %w", err)
		}
	}

	id := user.ID.String()
	created, err := createUserScript.Run(ctx, s.client,
		[]string{s.emailKey(user.Email), s.userKey(id)},
		id, user.Email, user.PasswordHash, boolFlag(user.IsEmailVerified), string(extra), user.CreatedAt.UnixMilli(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if created == 0 {
		return auth.ErrEmailAlreadyExists
	}
	return nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return s.updateUser(ctx, id, "password_hash", hash)
}

func (s *Store) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return s.updateUser(ctx, id, "verified", "1")
}

func (s *Store) updateUser(ctx context.Context, id uuid.UUID, field, value string) error {
	updated, err := updateUserScript.Run(ctx, s.client, []string{s.userKey(id.String())}, field, value).Int()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if updated == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *Store) SaveToken(ctx context.Context, t *auth.Token, revokePrior bool) error {
	saved, err := saveTokenScript.Run(ctx, s.client,
		[]string{s.tokenPrefix() + t.TokenHash, s.activeKey(t.UserID, t.Purpose)},
		t.TokenHash,
		t.UserID.String(),
		string(t.Purpose),
		t.IssuedAt.UnixMilli(),
		t.ExpiresAt.UnixMilli(),
		boolFlag(revokePrior),
		t.ExpiresAt.Add(s.retention).UnixMilli(),
		s.tokenPrefix(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if saved == 0 {
		return ErrDuplicateTokenHash
	}
	return nil
}

func (s *Store) ConsumeToken(ctx context.Context, purpose auth.Purpose, tokenHash string, now time.Time) (uuid.UUID, error) {
	res, err := consumeTokenScript.Run(ctx, s.client,
		[]string{s.tokenPrefix() + tokenHash},
		string(purpose), now.UnixMilli(),
	).Text()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume token: %w", err)
	}

	switch {
	case res == "expired":
		return uuid.Nil, auth.ErrTokenExpired
	case strings.HasPrefix(res, "ok:"):
		id, err := uuid.Parse(strings.TrimPrefix(res, "ok:"))
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to parse token user id: %w", err)
		}
		return id, nil
	default:
		return uuid.Nil, auth.ErrTokenNotFound
	}
}

func decodeUser(fields map[string]string) (*auth.User, error) {
	id, err := uuid.Parse(fields["id"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse user id: %w", err)
	}
	createdMs, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user created_at: %w", err)
	}

	u := &auth.User{
		ID:              id,
		Email:           fields["email"],
		PasswordHash:    fields["password_hash"],
		IsEmailVerified: fields["verified"] == "1",
		CreatedAt:       time.UnixMilli(createdMs).UTC(),
	}
	if extra := fields["extra"]; extra != "" && extra != "{}" {
		if err := json.Unmarshal([]byte(extra), &u.ExtraFields); err != nil {
			return nil, fmt.Errorf("failed to decode user extra fields: %w", err)
		}
	}
	return u, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
