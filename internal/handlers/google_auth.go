package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"POSTS_BACK-END/internal/config"
	"POSTS_BACK-END/internal/dto"
	"POSTS_BACK-END/internal/models"
	"POSTS_BACK-END/internal/repository"
	"POSTS_BACK-END/internal/utils"
)

const googleStateCookie = "google_oauth_state"

// GoogleUserInfoFetcher resolves an OAuth2 token to the Google account behind it.
type GoogleUserInfoFetcher func(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error)

// GoogleAuthHandler signs users in with Google and issues our own access token.
type GoogleAuthHandler struct {
	users        UserStore
	auth         *AuthHandler
	oauth2Config *oauth2.Config
	enabled      bool
	fetchUser    GoogleUserInfoFetcher
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(users UserStore, tokens TokenIssuer, cfg *config.Config) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleOAuth.ClientID,
		ClientSecret: cfg.GoogleOAuth.ClientSecret,
		RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &GoogleAuthHandler{
		users:        users,
		auth:         NewAuthHandler(users, tokens),
		oauth2Config: oauth2Config,
		enabled:      cfg.IsGoogleOAuthConfigured(),
		fetchUser:    fetchGoogleUserInfo,
	}
}

func (h *GoogleAuthHandler) writeDisabled(w http.ResponseWriter) {
	utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Google login disabled", "Google OAuth is not configured")
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Returns the Google consent URL and sets a state cookie
// @Tags authentication
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Failure 503 {object} dto.ErrorResponse "Google login not configured"
// @Router /login/google [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		h.writeDisabled(w)
		return
	}

	// Generate state parameter for CSRF protection
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     googleStateCookie,
		Value:    state,
		Path:     "/login/google",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{
		AuthURL: h.oauth2Config.AuthCodeURL(state),
		State:   state,
	})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Exchanges the authorization code and returns an access token
// @Tags authentication
// @Produce json
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State returned by /login/google"
// @Success 200 {object} dto.TokenResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /login/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		h.writeDisabled(w)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}
	cookie, err := r.Cookie(googleStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid state", "OAuth state does not match")
		return
	}

	token, err := h.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code", "Could not exchange authorization code")
		return
	}

	info, err := h.fetchUser(r.Context(), token)
	if err != nil {
		writeServerError(w, r, "GoogleCallback userinfo", err)
		return
	}
	if info.Email == "" || !info.Verified {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unverified account", "Google account email is not verified")
		return
	}

	user, err := h.findOrCreateUser(r.Context(), info)
	if err != nil {
		writeServerError(w, r, "GoogleCallback", err)
		return
	}

	h.auth.writeToken(w, r, user.ID)
}

// findOrCreateUser returns the user with the Google email, registering one
// with an unusable password on first sign-in.
func (h *GoogleAuthHandler) findOrCreateUser(ctx context.Context, info *dto.GoogleUserInfo) (*models.User, error) {
	email := normalizeEmail(info.Email)
	user, err := h.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Nobody knows this password, so only Google can sign the user in.
	hashed, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return nil, err
	}
	user, err = h.users.Create(ctx, email, hashed, nil)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a race with a concurrent first sign-in
		return h.users.GetByEmail(ctx, email)
	}
	return user, err
}

// fetchGoogleUserInfo fetches user information from Google
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(token)))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleUserInfo{
		ID:       userInfo.Id,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Verified: verified,
	}, nil
}
