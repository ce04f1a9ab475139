package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/emailauth/handler"
	"github.com/dmitrymomot/emailauth/pkg/binder"
	"github.com/dmitrymomot/emailauth/pkg/validator"
)

func render(t *testing.T, resp handler.Response) (*httptest.ResponseRecorder, handler.JSONResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, resp.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("data envelope", func(t *testing.T) {
		t.Parallel()

		w, body := render(t, handler.JSON(map[string]any{"success": true}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		assert.Equal(t, handler.JSONResponse{Data: map[string]any{"success": true}}, body)
	})

	t.Run("status and meta", func(t *testing.T) {
		t.Parallel()

		w, body := render(t, handler.JSON(
			map[string]string{"id": "1"},
			handler.WithJSONStatus(http.StatusCreated),
			handler.WithJSONMeta(map[string]any{"version": "1"}),
		))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, map[string]any{"id": "1"}, body.Data)
		assert.Equal(t, map[string]any{"version": "1"}, body.Meta)
		assert.Nil(t, body.Error)
	})

	t.Run("nil data omitted", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, handler.JSON(nil).Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.JSONEq(t, `{}`, w.Body.String())
	})
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	var verrs validator.ValidationErrors
	verrs.Add(validator.ValidationError{Field: "email", Message: "invalid email format"})

	tests := []struct {
		name       string
		err        any
		wantStatus int
		wantCode   string
		wantMsg    string
		wantDetail map[string][]string
	}{
		{
			name:       "http error uses status text",
			err:        handler.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
			wantMsg:    "Conflict",
		},
		{
			name:       "http error with message",
			err:        handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"),
			wantStatus: http.StatusUnauthorized,
			wantCode:   "invalid_credentials",
			wantMsg:    "Invalid email or password",
		},
		{
			name:       "wrapped http error",
			err:        fmt.Errorf("login: %w", handler.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
			wantMsg:    "Forbidden",
		},
		{
			name:       "validation errors",
			err:        fmt.Errorf("invalid input: %w", verrs),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
			wantMsg:    "Validation failed",
			wantDetail: map[string][]string{"email": {"invalid email format"}},
		},
		{
			name:       "malformed json",
			err:        fmt.Errorf("%w: unexpected EOF", binder.ErrFailedToParseJSON),
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
			wantMsg:    "Malformed JSON body",
		},
		{
			name:       "unsupported media type",
			err:        binder.ErrUnsupportedMediaType,
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   "unsupported_media_type",
			wantMsg:    "Unsupported Media Type",
		},
		{
			name:       "missing content type",
			err:        binder.ErrMissingContentType,
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   "unsupported_media_type",
			wantMsg:    "Unsupported Media Type",
		},
		{
			name:       "body too large",
			err:        binder.ErrRequestTooLarge,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "request_entity_too_large",
			wantMsg:    "Request Entity Too Large",
		},
		{
			name:       "internal error is not leaked",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_server_error",
			wantMsg:    "Internal Server Error",
		},
		{
			name:       "explicit detail",
			err:        &handler.ErrorDetail{Code: "custom", Message: "Custom"},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "custom",
			wantMsg:    "Custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, body := render(t, handler.JSONError(tt.err))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Nil(t, body.Data)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
			assert.Equal(t, tt.wantDetail, body.Error.Details)
		})
	}
}

func TestJSONError_StatusOverride(t *testing.T) {
	t.Parallel()

	w, body := render(t, handler.JSONError(
		&handler.ErrorDetail{Code: "email_taken", Message: "Email already registered"},
		handler.WithJSONStatus(http.StatusConflict),
	))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "email_taken", body.Error.Code)
}
