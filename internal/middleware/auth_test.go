package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POSTS_BACK-END/internal/config"
	"POSTS_BACK-END/internal/models"
	"POSTS_BACK-END/internal/repository"
	"POSTS_BACK-END/internal/testutil"
	"POSTS_BACK-END/internal/utils"
)

func newAuthFixture(t *testing.T) (*testutil.Store, *TokenService, *AuthMiddleware) {
	t.Helper()
	store := testutil.NewStore()
	store.SeedUser(models.User{ID: 1, Email: "alice@example.com"})
	tokens := NewTokenService(&config.JWTConfig{Secret: "test-secret", AccessTokenTTL: time.Hour, Issuer: "posts-api"})
	return store, tokens, NewAuthMiddleware(tokens, store.Users())
}

// whoami echoes the bound user's email.
func whoami(reached *bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*reached = true
		u, ok := utils.CurrentUserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		fmt.Fprint(w, u.Email)
	}
}

// tamper swaps the first signature character.
func tamper(token string) string {
	i := strings.LastIndex(token, ".") + 1
	swap := "A"
	if token[i:i+1] == swap {
		swap = "B"
	}
	return token[:i] + swap + token[i+1:]
}

func call(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireBindsUser(t *testing.T) {
	_, tokens, mw := newAuthFixture(t)
	token, err := tokens.Issue(1)
	require.NoError(t, err)

	var reached bool
	h := mw.Require(whoami(&reached))

	rec := call(h, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, "alice@example.com", rec.Body.String())

	// The scheme is case-insensitive
	rec = call(h, "bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRejects(t *testing.T) {
	_, tokens, mw := newAuthFixture(t)
	valid, err := tokens.Issue(1)
	require.NoError(t, err)
	orphan, err := tokens.Issue(2)
	require.NoError(t, err)
	expired, err := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(1)
	require.NoError(t, err)
	foreign, err := NewTokenService(&config.JWTConfig{Secret: "other", AccessTokenTTL: time.Hour}).Issue(1)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing header":  "",
		"wrong scheme":    "Basic " + valid,
		"no token":        "Bearer",
		"extra parts":     "Bearer " + valid + " extra",
		"garbage":         "Bearer not-a-jwt",
		"tampered":        "Bearer " + tamper(valid),
		"expired":         "Bearer " + expired,
		"wrong secret":    "Bearer " + foreign,
		"user not exists": "Bearer " + orphan,
	} {
		t.Run(name, func(t *testing.T) {
			var reached bool
			rec := call(mw.Require(whoami(&reached)), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, reached)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"error":"Unauthorized","message":"Could not validate credentials"}`, rec.Body.String())
		})
	}
}

func TestRequireDeletedUser(t *testing.T) {
	store, tokens, mw := newAuthFixture(t)
	token, err := tokens.Issue(1)
	require.NoError(t, err)
	store.DeleteUser(1)

	var reached bool
	rec := call(mw.Require(whoami(&reached)), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestRequireStoreErrors(t *testing.T) {
	store, tokens, mw := newAuthFixture(t)
	token, err := tokens.Issue(1)
	require.NoError(t, err)

	store.Err = fmt.Errorf("get user: %w", repository.ErrStoreUnavailable)
	var reached bool
	rec := call(mw.Require(whoami(&reached)), "Bearer "+token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, reached)

	store.Err = fmt.Errorf("get user: scan failed")
	rec = call(mw.Require(whoami(&reached)), "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, reached)
}

func TestRequireCanceledLookup(t *testing.T) {
	store, tokens, mw := newAuthFixture(t)
	token, err := tokens.Issue(1)
	require.NoError(t, err)
	store.Err = fmt.Errorf("get user: %w", context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	var reached bool
	mw.Require(whoami(&reached)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, reached)
}
