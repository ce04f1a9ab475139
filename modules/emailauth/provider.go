package emailauth

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/emailauth/handler"
	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/binder"
	"github.com/dmitrymomot/emailauth/pkg/logger"
	"github.com/dmitrymomot/emailauth/pkg/requestid"
)

const (
	DefaultID          = "email"
	DefaultDisplayName = "Email"
)

// AuthService is the subset of *auth.Service the provider calls.
type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*auth.User, error)
	Login(ctx context.Context, email, password string) (*auth.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
}

var _ AuthService = (*auth.Service)(nil)

// Provider exposes the email/password flows over HTTP.
type Provider struct {
	id          string
	displayName string
	svc         AuthService
	session     SessionHandler
	middlewares []func(http.Handler) http.Handler
	logger      *slog.Logger
	bind        binder.Bind
}

type Option func(*Provider)

// WithID sets the provider ID used as the mount path. Defaults to "email".
func WithID(id string) Option {
	return func(p *Provider) {
		if id != "" {
			p.id = id
		}
	}
}

func WithDisplayName(name string) Option {
	return func(p *Provider) {
		if name != "" {
			p.displayName = name
		}
	}
}

// WithSessionHandler sets what a successful login responds with.
// Defaults to UserSessionHandler.
func WithSessionHandler(h SessionHandler) Option {
	return func(p *Provider) {
		if h != nil {
			p.session = h
		}
	}
}

// WithMiddleware adds middleware to the provider's routes, such as a rate limiter.
func WithMiddleware(mws ...func(http.Handler) http.Handler) Option {
	return func(p *Provider) {
		p.middlewares = append(p.middlewares, mws...)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMaxBodySize limits request bodies. Defaults to binder.DefaultMaxJSONSize.
func WithMaxBodySize(n int64) Option {
	return func(p *Provider) {
		p.bind = binder.JSON(binder.WithMaxBodySize(n))
	}
}

func NewProvider(svc AuthService, opts ...Option) *Provider {
	p := &Provider{
		id:          DefaultID,
		displayName: DefaultDisplayName,
		svc:         svc,
		session:     UserSessionHandler,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		bind:        binder.JSON(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("emailauth"), logger.Provider(p.id))
	return p
}

func (p *Provider) ID() string { return p.id }

func (p *Provider) DisplayName() string { return p.displayName }

// Handle returns the provider's routes:
//
//	POST /login
//	POST /signup
//	POST /request-password-reset
//	POST /reset-password
//	POST /verify-email
func (p *Provider) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(p.middlewares...)

	errorHandler := handler.NewErrorHandler(p.logger)

	r.Post("/login", handler.Wrap(p.login,
		handler.WithBinder[handler.Context, LoginRequest](p.bind),
		handler.WithErrorHandler[handler.Context, LoginRequest](errorHandler),
	))
	r.Post("/signup", handler.Wrap(p.signup,
		handler.WithBinder[handler.Context, SignupRequest](p.bind),
		handler.WithErrorHandler[handler.Context, SignupRequest](errorHandler),
	))
	r.Post("/request-password-reset", handler.Wrap(p.requestPasswordReset,
		handler.WithBinder[handler.Context, RequestPasswordResetRequest](p.bind),
		handler.WithErrorHandler[handler.Context, RequestPasswordResetRequest](errorHandler),
	))
	r.Post("/reset-password", handler.Wrap(p.resetPassword,
		handler.WithBinder[handler.Context, ResetPasswordRequest](p.bind),
		handler.WithErrorHandler[handler.Context, ResetPasswordRequest](errorHandler),
	))
	r.Post("/verify-email", handler.Wrap(p.verifyEmail,
		handler.WithBinder[handler.Context, VerifyEmailRequest](p.bind),
		handler.WithErrorHandler[handler.Context, VerifyEmailRequest](errorHandler),
	))

	return r
}

func (p *Provider) login(ctx handler.Context, req LoginRequest) handler.Response {
	user, err := p.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return p.fail(ctx, "login", err)
	}
	return p.session.StartSession(ctx, user)
}

func (p *Provider) signup(ctx handler.Context, req SignupRequest) handler.Response {
	_, err := p.svc.Signup(ctx, auth.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Fields:   req.Fields,
	})
	if err != nil {
		return p.fail(ctx, "signup", err)
	}
	return handler.JSON(SuccessResponse{Success: true}, handler.WithJSONStatus(http.StatusCreated))
}

// requestPasswordReset always succeeds so the response does not reveal
// whether the email is registered.
func (p *Provider) requestPasswordReset(ctx handler.Context, req RequestPasswordResetRequest) handler.Response {
	if err := p.svc.RequestPasswordReset(ctx, req.Email); err != nil {
		p.logger.ErrorContext(ctx, "password reset request failed",
			logger.Handler("request_password_reset"),
			logger.RequestID(requestid.FromContext(ctx)),
			logger.Error(err),
		)
	}
	return handler.JSON(SuccessResponse{Success: true})
}

func (p *Provider) resetPassword(ctx handler.Context, req ResetPasswordRequest) handler.Response {
	if err := p.svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return p.fail(ctx, "reset_password", err)
	}
	return handler.JSON(SuccessResponse{Success: true})
}

func (p *Provider) verifyEmail(ctx handler.Context, req VerifyEmailRequest) handler.Response {
	if err := p.svc.VerifyEmail(ctx, req.Token); err != nil {
		return p.fail(ctx, "verify_email", err)
	}
	return handler.JSON(SuccessResponse{Success: true})
}

// fail logs err and renders its translation. Unrecognized errors are
// logged at error level, expected outcomes at debug level.
func (p *Provider) fail(ctx handler.Context, name string, err error) handler.Response {
	level := slog.LevelDebug
	if _, known := translate(err); !known {
		level = slog.LevelError
	}
	p.logger.LogAttrs(ctx, level, "auth request failed",
		logger.Handler(name),
		logger.RequestID(requestid.FromContext(ctx)),
		logger.Error(err),
	)
	return errorResponse(err)
}
