// Package emailauth serves the email/password flows of pkg/auth as a JSON
// API provider.
//
// A Provider has an ID (default "email") and a display name. Router mounts
// providers under /auth/{ID}:
//
//	POST /auth/email/signup                  {email, password, ...fields}  201
//	POST /auth/email/login                   {email, password}             200
//	POST /auth/email/verify-email            {token}                       200
//	POST /auth/email/request-password-reset  {email}                       200
//	POST /auth/email/reset-password          {token, newPassword}          200
//
// Service errors are translated into stable codes:
//
//	invalid_credentials       401
//	email_not_verified        403
//	email_taken               409
//	validation_failed         400 (with per-field details)
//	weak_password             400 (with per-field details)
//	invalid_or_expired_token  400
//	email_delivery_failed     500
//
// request-password-reset answers 200 whether or not the address is
// registered. A successful login is handed to the SessionHandler.
package emailauth
