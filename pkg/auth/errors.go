package auth

import "errors"

// Errors returned by Service. The HTTP layer maps each to a status code.
var (
	ErrValidation            = errors.New("invalid input")
	ErrWeakPassword          = errors.New("password does not meet security requirements")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrEmailDelivery         = errors.New("email delivery failed")
)

// Storage-level errors. They never leave Service unwrapped.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
)

// Configuration errors.
var (
	ErrMissingTokenSecret = errors.New("token secret is required")
	ErrMissingSender      = errors.New("email sender is required")
	ErrMissingStorage     = errors.New("user repository and token store are required")
	ErrInvalidConfig      = errors.New("invalid auth config")
)
