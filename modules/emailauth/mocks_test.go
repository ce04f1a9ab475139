package emailauth_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/email"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, in auth.SignupInput) (*auth.User, error) {
	args := m.Called(ctx, in)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, emailAddr, password string) (*auth.User, error) {
	args := m.Called(ctx, emailAddr, password)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	return m.Called(ctx, emailAddr).Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// inbox records every email instead of sending it.
type inbox struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (i *inbox) SendEmail(_ context.Context, params email.SendEmailParams) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sent = append(i.sent, params)
	return nil
}

func (i *inbox) last() (email.SendEmailParams, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.sent) == 0 {
		return email.SendEmailParams{}, false
	}
	return i.sent[len(i.sent)-1], true
}

func (i *inbox) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.sent)
}
