package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellcms/inkwell/internal/auth"
)

func TestAuthenticateLeavesCachedUserUntouched(t *testing.T) {
	authService := auth.NewAuth("test-secret")
	app := &application{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		auth:   authService,
	}

	cached := &auth.User{ID: 1, Name: "Jo", Username: "jo", Role: auth.RoleEditor}
	token, err := authService.GenerateToken(cached, time.Hour)
	require.NoError(t, err)
	authService.CacheAuthenticatedUser(token, cached)

	var fromContext *auth.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext, _ = authService.GetAuthenticatedUser(r)
	})

	request := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
	request.Header.Set("Authorization", "Token "+token)
	app.authenticate(next).ServeHTTP(httptest.NewRecorder(), request)

	require.NotNil(t, fromContext)
	assert.Equal(t, token, fromContext.Token)
	assert.Equal(t, cached.Username, fromContext.Username)
	assert.NotSame(t, cached, fromContext, "each request must see its own copy of the cached user")
	assert.Empty(t, cached.Token, "the shared cached user must never be written per request")
}
