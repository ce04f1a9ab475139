// Package pgstore implements auth.UserRepository and auth.TokenStore on PostgreSQL.
package pgstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	usersEmailKey      = "users_email_key"
	tokensTokenHashKey = "auth_tokens_token_hash_key"
	userColumns        = `id, email, password_hash, is_email_verified, extra_fields, created_at`
)

var ErrDuplicateTokenHash = errors.New("token hash already stored")

// DB is the subset of *pgxpool.Pool used by Store. pgxmock.PgxPoolIface satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	db DB
}

var (
	_ auth.UserRepository     = (*Store)(nil)
	_ auth.TokenStore         = (*Store)(nil)
	_ auth.ExpiredTokenPurger = (*Store)(nil)
)

func New(db DB) *Store {
	return &Store{db: db}
}

// Migrate applies the users and auth_tokens schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	return pg.Migrate(ctx, pool, fsys, cfg, log)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	var (
		u     auth.User
		extra []byte
	)
	err := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsEmailVerified, &extra, &u.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &u.ExtraFields); err != nil {
			return nil, fmt.Errorf("failed to decode user extra fields: %w", err)
		}
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *auth.User) error {
	extra, err := json.Marshal(orEmpty(user.ExtraFields))
	if err != nil {
		return fmt.Errorf("failed to encode user extra fields: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.PasswordHash, user.IsEmailVerified, extra, user.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err, usersEmailKey) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return s.updateUser(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (s *Store) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return s.updateUser(ctx, `UPDATE users SET is_email_verified = TRUE WHERE id = $1`, id)
}

func (s *Store) updateUser(ctx context.Context, query string, args ...any) error {
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// SaveToken inserts the token and, with revokePrior, consumes the user's other
// active tokens of the same purpose in the same transaction.
func (s *Store) SaveToken(ctx context.Context, t *auth.Token, revokePrior bool) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if revokePrior {
			if _, err := tx.Exec(ctx,
				`UPDATE auth_tokens SET consumed_at = $3 WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL`,
				t.UserID, string(t.Purpose), t.IssuedAt,
			); err != nil {
				return fmt.Errorf("failed to revoke prior tokens: %w", err)
			}
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO auth_tokens (id, purpose, user_id, token_hash, issued_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, string(t.Purpose), t.UserID, t.TokenHash, t.IssuedAt, t.ExpiresAt,
		)
		return err
	})
	switch {
	case err == nil:
		return nil
	case pg.IsForeignKeyViolationError(err):
		return auth.ErrUserNotFound
	case pg.IsDuplicateKeyError(err, tokensTokenHashKey):
		return errors.Join(ErrDuplicateTokenHash, err)
	default:
		return fmt.Errorf("failed to save token: %w", err)
	}
}

// ConsumeToken marks the token consumed with one conditional UPDATE, so only
// one concurrent caller can win. On a miss a follow-up read tells an expired
// token apart from a missing or already used one.
func (s *Store) ConsumeToken(ctx context.Context, purpose auth.Purpose, tokenHash string, now time.Time) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx,
		`UPDATE auth_tokens SET consumed_at = $3
		WHERE token_hash = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
		RETURNING user_id`,
		tokenHash, string(purpose), now,
	).Scan(&userID)
	if err == nil {
		return userID, nil
	}
	if !pg.IsNotFoundError(err) {
		return uuid.Nil, fmt.Errorf("failed to consume token: %w", err)
	}

	var expired bool
	err = s.db.QueryRow(ctx,
		`SELECT expires_at <= $3 FROM auth_tokens
		WHERE token_hash = $1 AND purpose = $2 AND consumed_at IS NULL`,
		tokenHash, string(purpose), now,
	).Scan(&expired)
	switch {
	case pg.IsNotFoundError(err):
		return uuid.Nil, auth.ErrTokenNotFound
	case err != nil:
		return uuid.Nil, fmt.Errorf("failed to check token: %w", err)
	case expired:
		return uuid.Nil, auth.ErrTokenExpired
	default:
		return uuid.Nil, auth.ErrTokenNotFound
	}
}

// DeleteExpiredTokens removes tokens that expired before cutoff.
func (s *Store) DeleteExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
