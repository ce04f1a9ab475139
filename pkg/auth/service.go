package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/emailauth/pkg/email"
	"github.com/dmitrymomot/emailauth/pkg/logger"
	"github.com/dmitrymomot/emailauth/pkg/sanitizer"
	"github.com/dmitrymomot/emailauth/pkg/token"
	"github.com/dmitrymomot/emailauth/pkg/validator"
)

const (
	defaultVerificationTokenTTL = 24 * time.Hour
	defaultResetTokenTTL        = time.Hour
	defaultDeliveryTimeout      = 30 * time.Second
)

// Config is the resolved provider configuration.
// Client routes are absolute URLs; the raw token is appended as a "token" query parameter.
type Config struct {
	From                     email.Address
	VerificationClientRoute  string
	PasswordResetClientRoute string
	// IsEmailAutoVerified creates users as verified and skips the verification email.
	// Meant for development only; the caller decides when it is safe.
	IsEmailAutoVerified bool
}

func (c Config) validate() error {
	if err := validator.Apply(
		validator.ValidEmail("from", c.From.Email),
		validator.ValidURL("verification_client_route", c.VerificationClientRoute),
		validator.ValidURL("password_reset_client_route", c.PasswordResetClientRoute),
	); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// DeliveryFailureHook is called when an auth email could not be sent and the
// error is not returned to the caller (async delivery, password reset requests).
type DeliveryFailureHook func(ctx context.Context, purpose Purpose, user *User, err error)

// Service implements the email/password flows: signup, login, email
// verification and password reset.
type Service struct {
	cfg    Config
	users  UserRepository
	tokens *TokenService
	sender email.EmailSender
	hasher PasswordHasher
	logger *slog.Logger

	signupFields        SignupFieldsExtractor
	verificationContent VerificationEmailContentFunc
	resetContent        PasswordResetEmailContentFunc
	verificationTTL     time.Duration
	resetTTL            time.Duration

	async             bool
	deliveryTimeout   time.Duration
	onDeliveryFailure DeliveryFailureHook
	pending           sync.WaitGroup

	// dummyHash is verified for unknown emails so Login costs the same either way.
	dummyHash string
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithHasher replaces the default bcrypt hasher.
func WithHasher(h PasswordHasher) ServiceOption {
	return func(s *Service) {
		s.hasher = h
	}
}

func WithSignupFields(x SignupFieldsExtractor) ServiceOption {
	return func(s *Service) {
		s.signupFields = x
	}
}

func WithVerificationEmailContent(fn VerificationEmailContentFunc) ServiceOption {
	return func(s *Service) {
		s.verificationContent = fn
	}
}

func WithPasswordResetEmailContent(fn PasswordResetEmailContentFunc) ServiceOption {
	return func(s *Service) {
		s.resetContent = fn
	}
}

func WithVerificationTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.verificationTTL = ttl
	}
}

func WithResetTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.resetTTL = ttl
	}
}

// WithAsyncDelivery sends emails in the background with the given timeout.
// Failures go to the log and the delivery failure hook instead of the caller.
// Password reset requests then return without waiting for the transport.
func WithAsyncDelivery(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.async = true
		if timeout > 0 {
			s.deliveryTimeout = timeout
		}
	}
}

func WithDeliveryFailureHook(fn DeliveryFailureHook) ServiceOption {
	return func(s *Service) {
		s.onDeliveryFailure = fn
	}
}

func NewService(cfg Config, users UserRepository, tokens *TokenService, sender email.EmailSender, opts ...ServiceOption) (*Service, error) {
	if users == nil || tokens == nil {
		return nil, ErrMissingStorage
	}
	if sender == nil {
		return nil, ErrMissingSender
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Service{
		cfg:                 cfg,
		users:               users,
		tokens:              tokens,
		sender:              sender,
		hasher:              NewBcryptHasher(),
		logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		signupFields:        NoSignupFields,
		verificationContent: DefaultVerificationEmailContent,
		resetContent:        DefaultPasswordResetEmailContent,
		verificationTTL:     defaultVerificationTokenTTL,
		resetTTL:            defaultResetTokenTTL,
		deliveryTimeout:     defaultDeliveryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("auth"))

	nonce, err := token.Nonce(24)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dummy password: %w", err)
	}
	// Suffix guarantees the random password passes any character class policy.
	if s.dummyHash, err = s.hasher.Hash(nonce + "aA1!"); err != nil {
		return nil, fmt.Errorf("failed to compute dummy hash: %w", err)
	}

	return s, nil
}

// SignupInput carries the signup request. Fields holds the raw request body
// and is passed to the SignupFieldsExtractor.
type SignupInput struct {
	Email    string
	Password string
	Fields   map[string]any
}

// Signup creates an account and, unless auto-verification is on, sends the
// verification email.
//
// When a synchronous send fails the created user is returned together with an
// error wrapping ErrEmailDelivery. The account is not rolled back.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	addr := sanitizer.NormalizeEmail(in.Email)
	if err := validateEmail(addr); err != nil {
		return nil, err
	}
	if err := validator.Apply(validator.Required("password", in.Password)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	fields, err := extractSignupFields(ctx, s.signupFields, in.Fields)
	if err != nil {
		return nil, err
	}

	// Hashing comes before the duplicate check so both outcomes pay for one hash.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	switch _, err := s.users.GetUserByEmail(ctx, addr); {
	case err == nil:
		return nil, ErrEmailAlreadyExists
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &User{
		ID:              uuid.New(),
		Email:           addr,
		PasswordHash:    hash,
		IsEmailVerified: s.cfg.IsEmailAutoVerified,
		ExtraFields:     fields,
		CreatedAt:       time.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		logger.Event("signup"),
		logger.UserID(user.ID.String()),
		logger.Email(user.Email),
		slog.Bool("auto_verified", user.IsEmailVerified),
	)

	if user.IsEmailVerified {
		return user, nil
	}

	if err := s.sendVerificationEmail(ctx, user); err != nil {
		return user, err
	}
	return user, nil
}

// Login checks credentials. Unknown emails and wrong passwords both yield
// ErrInvalidCredentials. ErrEmailNotVerified is only returned after the
// password matched.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*User, error) {
	addr := sanitizer.NormalizeEmail(emailAddr)

	user, err := s.users.GetUserByEmail(ctx, addr)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.InfoContext(ctx, "login failed",
			logger.Event("login"),
			logger.UserID(user.ID.String()),
		)
		return nil, ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	return user, nil
}

// RequestPasswordReset emails a reset link when the address belongs to an
// account. Malformed and unknown addresses return nil without sending, and
// failures after the account lookup are logged and reported instead of
// returned, so the outcome never reveals whether an account exists.
//
// With synchronous delivery a known address also waits for the email
// transport, so response time can still tell accounts apart. Use
// WithAsyncDelivery when that matters.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	addr := sanitizer.NormalizeEmail(emailAddr)
	if err := validateEmail(addr); err != nil {
		s.logger.DebugContext(ctx, "password reset requested for malformed email",
			logger.Event("request_password_reset"),
			logger.Error(err),
		)
		return nil
	}

	user, err := s.users.GetUserByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.DebugContext(ctx, "password reset requested for unknown email",
				logger.Event("request_password_reset"),
				logger.Email(addr),
			)
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	raw, err := s.tokens.Issue(ctx, PurposeResetPassword, user.ID, s.resetTTL)
	if err != nil {
		s.reportDeliveryFailure(ctx, PurposeResetPassword, user, fmt.Errorf("%w: failed to issue reset token: %w", ErrEmailDelivery, err))
		return nil
	}

	content, err := s.resetContent(ctx, PasswordResetEmailParams{
		PasswordResetLink: buildLink(s.cfg.PasswordResetClientRoute, raw),
	})
	if err != nil {
		s.reportDeliveryFailure(ctx, PurposeResetPassword, user, fmt.Errorf("%w: failed to build password reset email: %w", ErrEmailDelivery, err))
		return nil
	}

	// Failures are logged and reported by deliver.
	_ = s.deliver(ctx, PurposeResetPassword, user, content)
	return nil
}

// ResetPassword sets a new password using a reset token. The password policy
// is checked before the token is consumed so a rejected password leaves the
// token usable.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if err := validator.Apply(validator.Required("token", rawToken)); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	userID, err := s.consume(ctx, PurposeResetPassword, rawToken)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("%w: %w", ErrInvalidOrExpiredToken, err)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset",
		logger.Event("reset_password"),
		logger.UserID(userID.String()),
	)
	return nil
}

// VerifyEmail marks the token's user as verified.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	if err := validator.Apply(validator.Required("token", rawToken)); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	userID, err := s.consume(ctx, PurposeVerifyEmail, rawToken)
	if err != nil {
		return err
	}

	if err := s.users.MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("%w: %w", ErrInvalidOrExpiredToken, err)
		}
		return fmt.Errorf("failed to mark email verified: %w", err)
	}

	s.logger.InfoContext(ctx, "email verified",
		logger.Event("verify_email"),
		logger.UserID(userID.String()),
	)
	return nil
}

// Wait blocks until background deliveries started so far have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) consume(ctx context.Context, purpose Purpose, raw string) (uuid.UUID, error) {
	userID, err := s.tokens.Consume(ctx, purpose, raw)
	if err == nil {
		return userID, nil
	}
	if errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrTokenExpired) {
		s.logger.InfoContext(ctx, "token rejected",
			logger.Event(purpose.String()),
			logger.Error(err),
		)
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidOrExpiredToken, err)
	}
	return uuid.Nil, fmt.Errorf("failed to consume token: %w", err)
}

func (s *Service) sendVerificationEmail(ctx context.Context, user *User) error {
	raw, err := s.tokens.Issue(ctx, PurposeVerifyEmail, user.ID, s.verificationTTL)
	if err != nil {
		return fmt.Errorf("%w: failed to issue verification token: %w", ErrEmailDelivery, err)
	}

	content, err := s.verificationContent(ctx, VerificationEmailParams{
		VerificationLink: buildLink(s.cfg.VerificationClientRoute, raw),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to build verification email: %w", ErrEmailDelivery, err)
	}

	return s.deliver(ctx, PurposeVerifyEmail, user, content)
}

// deliver sends content to the user. In async mode it always returns nil.
func (s *Service) deliver(ctx context.Context, purpose Purpose, user *User, content EmailContent) error {
	params := email.SendEmailParams{
		From:     s.cfg.From,
		SendTo:   user.Email,
		Subject:  sanitizer.SingleLine(content.Subject),
		BodyText: content.Text,
		BodyHTML: content.HTML,
		Tag:      purpose.String(),
	}

	if !s.async {
		if err := s.sender.SendEmail(ctx, params); err != nil {
			err = fmt.Errorf("%w: %w", ErrEmailDelivery, err)
			s.reportDeliveryFailure(ctx, purpose, user, err)
			return err
		}
		return nil
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("email delivery panicked",
					logger.UserID(user.ID.String()),
					slog.Any("panic", r),
					logger.Event(purpose.String()),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.deliveryTimeout)
		defer cancel()

		if err := s.sender.SendEmail(ctx, params); err != nil {
			s.reportDeliveryFailure(ctx, purpose, user, fmt.Errorf("%w: %w", ErrEmailDelivery, err))
		}
	}()
	return nil
}

func (s *Service) reportDeliveryFailure(ctx context.Context, purpose Purpose, user *User, err error) {
	s.logger.ErrorContext(ctx, "failed to send auth email",
		logger.Event(purpose.String()),
		logger.UserID(user.ID.String()),
		logger.Email(user.Email),
		logger.Error(err),
	)
	if s.onDeliveryFailure != nil {
		s.onDeliveryFailure(ctx, purpose, user, err)
	}
}

func validateEmail(addr string) error {
	err := validator.Apply(validator.Required("email", addr))
	if err == nil {
		err = validator.Apply(validator.ValidEmail("email", addr))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// buildLink appends the token to route as a query parameter, keeping any
// query the route already has.
func buildLink(route, raw string) string {
	u, err := url.Parse(route)
	if err != nil {
		return route + "?token=" + url.QueryEscape(raw)
	}
	q := u.Query()
	q.Set("token", raw)
	u.RawQuery = q.Encode()
	return u.String()
}
