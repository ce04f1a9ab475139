package auth_test

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/email"
)

// MockEmailSender is a mock implementation of email.EmailSender.
type MockEmailSender struct {
	mock.Mock

	mu      sync.Mutex
	sent    []email.SendEmailParams
	ctxErrs []error
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	m.mu.Lock()
	m.sent = append(m.sent, params)
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()

	args := m.Called(ctx, params)
	return args.Error(0)
}

// Sent returns the params of every SendEmail call so far.
func (m *MockEmailSender) Sent() []email.SendEmailParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sent)
}

// ContextErrors returns ctx.Err() as observed at the start of each SendEmail call.
func (m *MockEmailSender) ContextErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ctxErrs)
}

// MockUserRepository is a mock implementation of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, addr string) (*auth.User, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) bool {
	args := m.Called(password, hash)
	return args.Bool(0)
}
