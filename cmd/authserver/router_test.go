package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/emailauth/modules/emailauth"
	"github.com/dmitrymomot/emailauth/pkg/httpserver"
	"github.com/dmitrymomot/emailauth/pkg/requestid"
)

func TestNewRouter(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	failing := httpserver.Check{Name: "db", Fn: func(context.Context) error { return errors.New("down") }}
	router := newRouter(validAppConfig(), log, []httpserver.Check{failing}, emailauth.NewProvider(nil))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", path: "/health/live", wantStatus: http.StatusOK, wantBody: "ALIVE"},
		{name: "readiness with failing check", path: "/health/ready", wantStatus: http.StatusServiceUnavailable, wantBody: "NOT_READY"},
		{name: "providers", path: "/auth/providers", wantStatus: http.StatusOK, wantBody: `"id":"email"`},
		{name: "unknown path", path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotEmpty(t, rec.Header().Get(requestid.Header))
		})
	}
}
