package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"POSTS_BACK-END/internal/config"
	"POSTS_BACK-END/internal/dto"
	"POSTS_BACK-END/internal/models"
	"POSTS_BACK-END/internal/testutil"
	"POSTS_BACK-END/internal/utils"
)

type stubTokens struct {
	issued []int64
	err    error
}

func (s *stubTokens) Issue(userID int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, userID)
	return "token-for-user", nil
}

func (s *stubTokens) TTL() time.Duration { return 30 * time.Minute }

func authMux(h *AuthHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", h.Register)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /users/me", h.Me)
	mux.HandleFunc("GET /users/{id}", h.GetUser)
	return mux
}

func TestRegister(t *testing.T) {
	store := testutil.NewStore()
	mux := authMux(NewAuthHandler(store.Users(), &stubTokens{}))

	rec := serveAs(mux, nil, http.MethodPost, "/users", `{"email":"  Alice@Example.com ","password":"secret","phone_number":"+66812345678"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[dto.UserResponse](t, rec)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "alice@example.com", resp.Email)
	require.NotNil(t, resp.PhoneNumber)
	assert.Equal(t, "+66812345678", *resp.PhoneNumber)
	assert.NotContains(t, rec.Body.String(), "password")

	stored, err := store.Users().GetByEmail(t.Context(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
	assert.True(t, utils.CheckPassword("secret", stored.PasswordHash))

	rec = serveAs(mux, nil, http.MethodPost, "/users", `{"email":"alice@example.com","password":"other"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", decodeBody[dto.ErrorResponse](t, rec).Error)
}

func TestRegisterValidation(t *testing.T) {
	store := testutil.NewStore()
	mux := authMux(NewAuthHandler(store.Users(), &stubTokens{}))

	for name, body := range map[string]string{
		"missing email":     `{"password":"secret"}`,
		"missing password":  `{"email":"a@example.com"}`,
		"bad email":         `{"email":"not-an-email","password":"secret"}`,
		"password too long": `{"email":"a@example.com","password":"` + strings.Repeat("x", 73) + `"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := serveAs(mux, nil, http.MethodPost, "/users", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, store.Writes())
}

func seedUser(t *testing.T, store *testutil.Store, id int64, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := models.User{ID: id, Email: email, PasswordHash: hash, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.SeedUser(u)
	return &u
}

func TestLogin(t *testing.T) {
	store := testutil.NewStore()
	seedUser(t, store, 7, "alice@example.com", "secret")
	tokens := &stubTokens{}
	mux := authMux(NewAuthHandler(store.Users(), tokens))

	t.Run("json", func(t *testing.T) {
		rec := serveAs(mux, nil, http.MethodPost, "/login", `{"email":"ALICE@example.com","password":"secret"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[dto.TokenResponse](t, rec)
		assert.Equal(t, "token-for-user", resp.AccessToken)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, int64(1800), resp.ExpiresIn)
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{"username": {"alice@example.com"}, "password": {"secret"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "token-for-user", decodeBody[dto.TokenResponse](t, rec).AccessToken)
	})

	assert.Equal(t, []int64{7, 7}, tokens.issued)
}

func TestLoginInvalidCredentials(t *testing.T) {
	store := testutil.NewStore()
	seedUser(t, store, 7, "alice@example.com", "secret")
	tokens := &stubTokens{}
	mux := authMux(NewAuthHandler(store.Users(), tokens))

	wrongPassword := serveAs(mux, nil, http.MethodPost, "/login", `{"email":"alice@example.com","password":"nope"}`)
	unknownEmail := serveAs(mux, nil, http.MethodPost, "/login", `{"email":"bob@example.com","password":"secret"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Empty(t, tokens.issued)

	rec := serveAs(mux, nil, http.MethodPost, "/login", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginTokenFailure(t *testing.T) {
	store := testutil.NewStore()
	seedUser(t, store, 7, "alice@example.com", "secret")
	mux := authMux(NewAuthHandler(store.Users(), &stubTokens{err: errors.New("signing failed")}))

	rec := serveAs(mux, nil, http.MethodPost, "/login", `{"email":"alice@example.com","password":"secret"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMeAndGetUser(t *testing.T) {
	store := testutil.NewStore()
	user := seedUser(t, store, 3, "alice@example.com", "secret")
	mux := authMux(NewAuthHandler(store.Users(), &stubTokens{}))

	rec := serveAs(mux, user, http.MethodGet, "/users/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[dto.UserResponse](t, rec)
	assert.Equal(t, int64(3), me.ID)
	assert.Equal(t, "2024-01-01T00:00:00Z", me.CreatedAt)

	assert.Equal(t, http.StatusUnauthorized, serveAs(mux, nil, http.MethodGet, "/users/me", "").Code)

	rec = serveAs(mux, user, http.MethodGet, "/users/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", decodeBody[dto.UserResponse](t, rec).Email)

	rec = serveAs(mux, user, http.MethodGet, "/users/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user with id: 99 does not exist", decodeBody[dto.ErrorResponse](t, rec).Message)

	assert.Equal(t, http.StatusBadRequest, serveAs(mux, user, http.MethodGet, "/users/abc", "").Code)
}

func googleConfig(enabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.GoogleOAuth.RedirectURL = "http://localhost:8080/login/google/callback"
	if enabled {
		cfg.GoogleOAuth.ClientID = "client-id"
		cfg.GoogleOAuth.ClientSecret = "client-secret"
	}
	return cfg
}

func TestGoogleLoginDisabled(t *testing.T) {
	h := NewGoogleAuthHandler(testutil.NewStore().Users(), &stubTokens{}, googleConfig(false))

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/login/google", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/login/google/callback?code=x&state=y", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGoogleLogin(t *testing.T) {
	h := NewGoogleAuthHandler(testutil.NewStore().Users(), &stubTokens{}, googleConfig(true))

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/login/google", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[dto.GoogleLoginResponse](t, rec)
	assert.NotEmpty(t, resp.State)
	assert.Contains(t, resp.AuthURL, "state="+resp.State)
	assert.Contains(t, resp.AuthURL, "client_id=client-id")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, googleStateCookie, cookies[0].Name)
	assert.Equal(t, resp.State, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestGoogleCallbackRejectsBadRequests(t *testing.T) {
	h := NewGoogleAuthHandler(testutil.NewStore().Users(), &stubTokens{}, googleConfig(true))

	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/login/google/callback?state=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/login/google/callback?code=xyz&state=abc", nil)
	req.AddCookie(&http.Cookie{Name: googleStateCookie, Value: "different"})
	rec = httptest.NewRecorder()
	h.GoogleCallback(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid state", decodeBody[dto.ErrorResponse](t, rec).Error)

	rec = httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/login/google/callback?code=xyz&state=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleFindOrCreateUser(t *testing.T) {
	store := testutil.NewStore()
	existing := seedUser(t, store, 5, "alice@example.com", "secret")
	h := NewGoogleAuthHandler(store.Users(), &stubTokens{}, googleConfig(true))

	user, err := h.findOrCreateUser(t.Context(), &dto.GoogleUserInfo{Email: "Alice@Example.com", Verified: true})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)

	user, err = h.findOrCreateUser(t.Context(), &dto.GoogleUserInfo{Email: "new@example.com", Verified: true})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Equal(t, 1, store.Writes())
}
