// Package auth implements email/password authentication: signup, login,
// email verification and password reset.
//
// # Service
//
// Service ties the flows together over three collaborators:
//
//   - UserRepository persists accounts keyed by normalized email
//   - TokenService issues and consumes single-use link tokens
//   - email.EmailSender delivers verification and reset emails
//
// Usage:
//
//	store := auth.NewMemoryStorage()
//	tokens, err := auth.NewTokenService(store, cfg.TokenSecret)
//	if err != nil {
//		return err
//	}
//
//	svc, err := auth.NewService(auth.Config{
//		From:                     email.Address{Name: "Acme", Email: "noreply@acme.com"},
//		VerificationClientRoute:  "https://acme.com/email-verification",
//		PasswordResetClientRoute: "https://acme.com/password-reset",
//	}, store, tokens, sender, auth.WithLogger(log))
//
// Emails are normalized with sanitizer.NormalizeEmail before every lookup, so
// "Alice@Example.com" and "alice@example.com" are the same account.
//
// # Tokens
//
// A raw token is an HMAC-signed envelope around a random nonce and the token
// purpose. Only its SHA-256 hash is stored. Consumption is a single
// conditional write in the TokenStore, so concurrent attempts with the same
// token succeed at most once. Issuing a token revokes earlier unconsumed
// tokens of the same purpose for that user unless WithKeepPriorTokens is set.
//
// # Passwords
//
// PasswordHasher checks the password policy before hashing. BcryptHasher is
// the default; Argon2idHasher stores PHC strings and has no 72-byte limit.
// Login verifies a dummy hash for unknown emails so that response time does
// not reveal whether an account exists.
//
// # Errors
//
// Service returns the sentinel errors from errors.go, wrapped with context.
// Check them with errors.Is. Validation failures also carry
// validator.ValidationErrors with per-field details.
//
// # Storage
//
// MemoryStorage is provided for tests and single-instance development. The
// pgstore and redisstore subpackages implement the same interfaces on
// PostgreSQL and Redis.
package auth
