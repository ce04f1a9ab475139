package emailauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/emailauth/handler"
	"github.com/dmitrymomot/emailauth/modules/emailauth"
	"github.com/dmitrymomot/emailauth/pkg/auth"
	"github.com/dmitrymomot/emailauth/pkg/email"
	"github.com/dmitrymomot/emailauth/pkg/validator"
)

const (
	testPassword    = "Sup3rSecret!"
	testNewPassword = "An0therSecret!"
)

type testApp struct {
	handler http.Handler
	inbox   *inbox
	store   *auth.MemoryStorage
}

func newTestApp(t *testing.T, svcOpts []auth.ServiceOption, opts ...emailauth.Option) *testApp {
	t.Helper()

	store := auth.NewMemoryStorage()
	tokens, err := auth.NewTokenService(store, "test-secret-0123456789abcdef")
	require.NoError(t, err)

	box := &inbox{}
	svcOpts = append([]auth.ServiceOption{
		auth.WithHasher(auth.NewBcryptHasher(auth.WithBcryptCost(bcrypt.MinCost))),
	}, svcOpts...)
	svc, err := auth.NewService(auth.Config{
		From:                     email.Address{Name: "Acme", Email: "noreply@acme.test"},
		VerificationClientRoute:  "https://app.acme.test/email-verification",
		PasswordResetClientRoute: "https://app.acme.test/password-reset",
	}, store, tokens, box, svcOpts...)
	require.NoError(t, err)

	return &testApp{
		handler: emailauth.Router(emailauth.NewProvider(svc, opts...)),
		inbox:   box,
		store:   store,
	}
}

func serve(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, handler.JSONResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp handler.JSONResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func (a *testApp) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, handler.JSONResponse) {
	t.Helper()
	return serve(t, a.handler, path, body)
}

// lastToken pulls the token query parameter out of the most recent email.
func (a *testApp) lastToken(t *testing.T) string {
	t.Helper()

	msg, ok := a.inbox.last()
	require.True(t, ok, "no email sent")
	i := strings.Index(msg.BodyText, "https://")
	require.GreaterOrEqual(t, i, 0, "no link in %q", msg.BodyText)
	link, err := url.Parse(strings.Fields(msg.BodyText[i:])[0])
	require.NoError(t, err)
	raw := link.Query().Get("token")
	require.NotEmpty(t, raw)
	return raw
}

func errorCode(t *testing.T, resp handler.JSONResponse) string {
	t.Helper()
	require.NotNil(t, resp.Error, "expected error body")
	return resp.Error.Code
}

func body(v map[string]any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestProvider_SignupVerifyLogin(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	creds := body(map[string]any{"email": "alice@example.com", "password": testPassword})

	rec, resp := app.post(t, "/auth/email/signup", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"success": true}, resp.Data)
	require.Equal(t, 1, app.inbox.count())

	msg, _ := app.inbox.last()
	assert.Equal(t, "alice@example.com", msg.SendTo)
	assert.Equal(t, "noreply@acme.test", msg.From.Email)
	assert.Contains(t, msg.BodyText, "https://app.acme.test/email-verification?token=")

	rec, resp = app.post(t, "/auth/email/login", creds)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "email_not_verified", errorCode(t, resp))

	verify := body(map[string]any{"token": app.lastToken(t)})
	rec, resp = app.post(t, "/auth/email/verify-email", verify)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"success": true}, resp.Data)

	rec, resp = app.post(t, "/auth/email/verify-email", verify)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_or_expired_token", errorCode(t, resp))

	rec, resp = app.post(t, "/auth/email/login", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.Equal(t, true, user["is_email_verified"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestProvider_LoginFailures(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)

	rec, _ := app.post(t, "/auth/email/signup", body(map[string]any{"email": "bob@example.com", "password": testPassword}))
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name  string
		email string
		pass  string
	}{
		{name: "wrong password", email: "bob@example.com", pass: "Wr0ngPassword!"},
		{name: "unknown email", email: "nobody@example.com", pass: testPassword},
		{name: "empty credentials"},
	}
	for _, tt := range tests {
		rec, resp := app.post(t, "/auth/email/login", body(map[string]any{"email": tt.email, "password": tt.pass}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tt.name)
		assert.Equal(t, "invalid_credentials", errorCode(t, resp), tt.name)
	}
}

func TestProvider_SignupErrors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	rec, _ := app.post(t, "/auth/email/signup", body(map[string]any{"email": "taken@example.com", "password": testPassword}))
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "duplicate email with different case",
			body:       body(map[string]any{"email": "TAKEN@example.com", "password": testPassword}),
			wantStatus: http.StatusConflict,
			wantCode:   "email_taken",
		},
		{
			name:       "malformed email",
			body:       body(map[string]any{"email": "not-an-email", "password": testPassword}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
			wantField:  "email",
		},
		{
			name:       "missing password",
			body:       body(map[string]any{"email": "new@example.com"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
			wantField:  "password",
		},
		{
			name:       "weak password",
			body:       body(map[string]any{"email": "new@example.com", "password": "short"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "weak_password",
			wantField:  "password",
		},
		{
			name:       "email is not a string",
			body:       `{"email":42,"password":"Sup3rSecret!"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "body is not an object",
			body:       `["alice@example.com"]`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, resp := app.post(t, "/auth/email/signup", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, resp))
			if tt.wantField != "" {
				assert.Contains(t, resp.Error.Details, tt.wantField)
			}
		})
	}
}

func TestProvider_SignupFields(t *testing.T) {
	t.Parallel()

	extractor := auth.SignupFieldsFunc(func(_ context.Context, data map[string]any) (map[string]any, error) {
		name, _ := data["name"].(string)
		if err := validator.Apply(validator.Required("name", name)); err != nil {
			return nil, err
		}
		return map[string]any{"name": name}, nil
	})
	app := newTestApp(t, []auth.ServiceOption{auth.WithSignupFields(extractor)})

	rec, resp := app.post(t, "/auth/email/signup", body(map[string]any{"email": "carol@example.com", "password": testPassword}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", errorCode(t, resp))
	assert.Contains(t, resp.Error.Details, "name")

	rec, _ = app.post(t, "/auth/email/signup", body(map[string]any{
		"email":    "carol@example.com",
		"password": testPassword,
		"name":     "Carol",
		"ignored":  true,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	user, err := app.store.GetUserByEmail(context.Background(), "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Carol"}, user.ExtraFields)
}

func TestProvider_PasswordReset(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	rec, _ := app.post(t, "/auth/email/signup", body(map[string]any{"email": "dave@example.com", "password": testPassword}))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, app.inbox.count())

	rec, resp := app.post(t, "/auth/email/request-password-reset", body(map[string]any{"email": "ghost@example.com"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true}, resp.Data)
	assert.Equal(t, 1, app.inbox.count(), "no email for unknown accounts")

	rec, resp = app.post(t, "/auth/email/request-password-reset", body(map[string]any{"email": "Dave@Example.com"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true}, resp.Data)
	require.Equal(t, 2, app.inbox.count())

	msg, _ := app.inbox.last()
	assert.Contains(t, msg.BodyText, "https://app.acme.test/password-reset?token=")
	raw := app.lastToken(t)

	rec, resp = app.post(t, "/auth/email/reset-password", body(map[string]any{"token": raw, "newPassword": "weak"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "weak_password", errorCode(t, resp))

	rec, _ = app.post(t, "/auth/email/reset-password", body(map[string]any{"token": raw, "newPassword": testNewPassword}))
	require.Equal(t, http.StatusOK, rec.Code, "weak password must not burn the token: %s", rec.Body.String())

	rec, resp = app.post(t, "/auth/email/reset-password", body(map[string]any{"token": raw, "newPassword": testNewPassword}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_or_expired_token", errorCode(t, resp))

	rec, resp = app.post(t, "/auth/email/reset-password", body(map[string]any{"token": "forged", "newPassword": testNewPassword}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_or_expired_token", errorCode(t, resp))

	user, err := app.store.GetUserByEmail(context.Background(), "dave@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(testNewPassword)))
}

func TestProvider_MalformedRequests(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil, emailauth.WithMaxBodySize(64))

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		rec, resp := app.post(t, "/auth/email/login", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", errorCode(t, resp))
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/auth/email/login", strings.NewReader("email=a@b.co"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()
		rec, resp := app.post(t, "/auth/email/login", body(map[string]any{"email": strings.Repeat("a", 80) + "@example.com"}))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "request_entity_too_large", errorCode(t, resp))
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/email/login", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRouter_ProviderIdentity(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil, emailauth.WithID("password"), emailauth.WithDisplayName("Email & password"))

	rec, _ := app.post(t, "/auth/password/signup", body(map[string]any{"email": "erin@example.com", "password": testPassword}))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/email/signup", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/providers", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[{"id":"password","displayName":"Email & password"}]}`, rec.Body.String())
}

func TestProvider_Defaults(t *testing.T) {
	t.Parallel()

	p := emailauth.NewProvider(&MockAuthService{})
	assert.Equal(t, "email", p.ID())
	assert.Equal(t, "Email", p.DisplayName())
}

func TestProvider_SessionHandler(t *testing.T) {
	t.Parallel()

	user := &auth.User{Email: "frank@example.com", IsEmailVerified: true}
	svc := &MockAuthService{}
	svc.On("Login", mock.Anything, "frank@example.com", testPassword).Return(user, nil)

	session := emailauth.SessionHandlerFunc(func(ctx handler.Context, u *auth.User) handler.Response {
		http.SetCookie(ctx.ResponseWriter(), &http.Cookie{Name: "session", Value: "s-" + u.Email})
		return handler.JSON(map[string]string{"session": "started"})
	})

	h := emailauth.Router(emailauth.NewProvider(svc, emailauth.WithSessionHandler(session)))
	rec, resp := serve(t, h, "/auth/email/login", body(map[string]any{"email": "frank@example.com", "password": testPassword}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"session": "started"}, resp.Data)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "session=s-frank@example.com")
	svc.AssertExpectations(t)
}

func TestProvider_Middleware(t *testing.T) {
	t.Parallel()

	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	svc := &MockAuthService{}
	h := emailauth.Router(emailauth.NewProvider(svc, emailauth.WithMiddleware(deny)))

	rec, _ := serve(t, h, "/auth/email/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestProvider_ErrorTranslation(t *testing.T) {
	t.Parallel()

	var verrs validator.ValidationErrors
	verrs.Add(validator.ValidationError{Field: "password", Message: "must be at least 8 characters"})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail bool
	}{
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: "invalid_credentials"},
		{name: "not verified", err: auth.ErrEmailNotVerified, wantStatus: http.StatusForbidden, wantCode: "email_not_verified"},
		{name: "email taken", err: auth.ErrEmailAlreadyExists, wantStatus: http.StatusConflict, wantCode: "email_taken"},
		{name: "validation", err: fmt.Errorf("%w: %w", auth.ErrValidation, verrs), wantStatus: http.StatusBadRequest, wantCode: "validation_failed", wantDetail: true},
		{name: "weak password", err: fmt.Errorf("%w: %w", auth.ErrWeakPassword, verrs), wantStatus: http.StatusBadRequest, wantCode: "weak_password", wantDetail: true},
		{name: "token", err: fmt.Errorf("%w: %w", auth.ErrInvalidOrExpiredToken, auth.ErrTokenExpired), wantStatus: http.StatusBadRequest, wantCode: "invalid_or_expired_token"},
		{name: "delivery", err: fmt.Errorf("%w: smtp down", auth.ErrEmailDelivery), wantStatus: http.StatusInternalServerError, wantCode: "email_delivery_failed"},
		{name: "unexpected", err: errors.New("connection refused"), wantStatus: http.StatusInternalServerError, wantCode: "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &MockAuthService{}
			svc.On("Signup", mock.Anything, mock.Anything).Return(nil, tt.err)
			h := emailauth.Router(emailauth.NewProvider(svc))

			rec, resp := serve(t, h, "/auth/email/signup", body(map[string]any{"email": "a@b.co", "password": "x"}))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, resp))
			assert.Equal(t, tt.wantDetail, len(resp.Error.Details) > 0)
			assert.NotContains(t, rec.Body.String(), "smtp down")
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestProvider_RequestPasswordResetNeverFails(t *testing.T) {
	t.Parallel()

	svc := &MockAuthService{}
	svc.On("RequestPasswordReset", mock.Anything, "a@b.co").Return(errors.New("db down"))
	h := emailauth.Router(emailauth.NewProvider(svc))

	rec, resp := serve(t, h, "/auth/email/request-password-reset", body(map[string]any{"email": "a@b.co"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"success": true}, resp.Data)
	svc.AssertExpectations(t)
}

func TestProvider_PassesSignupPayload(t *testing.T) {
	t.Parallel()

	svc := &MockAuthService{}
	svc.On("Signup", mock.Anything, mock.MatchedBy(func(in auth.SignupInput) bool {
		return in.Email == "g@example.com" && in.Password == testPassword && in.Fields["plan"] == "pro"
	})).Return(&auth.User{}, nil)
	h := emailauth.Router(emailauth.NewProvider(svc))

	rec, _ := serve(t, h, "/auth/email/signup", body(map[string]any{"email": "g@example.com", "password": testPassword, "plan": "pro"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}
