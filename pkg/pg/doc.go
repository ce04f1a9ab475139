// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config (populated with caarlos0/env)
// and retries until the database answers a ping. Migrate runs goose
// migrations from an fs.FS, usually an embed.FS owned by the store package
// that defines the schema. Healthcheck wraps any Pinger for readiness probes.
//
// Error helpers classify *pgconn.PgError values by SQLSTATE using pgerrcode:
//
//	if pg.IsDuplicateKeyError(err, "users_email_key") {
//		return auth.ErrEmailAlreadyExists
//	}
package pg
