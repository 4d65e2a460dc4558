package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"POSTS_BACK-END/internal/models"
	"POSTS_BACK-END/internal/repository"
	"POSTS_BACK-END/internal/utils"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserFinder looks up the user a verified token refers to.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Every authentication failure gets the same body.
const unauthorizedMessage = "Could not validate credentials"

// AuthMiddleware validates bearer tokens and binds the current user to the
// request context.
type AuthMiddleware struct {
	tokens TokenVerifier
	users  UserFinder
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(tokens TokenVerifier, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Require rejects the request with 401 unless it carries a valid token for
// an existing user.
func (m *AuthMiddleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w)
			return
		}

		userID, err := m.tokens.Verify(tokenString)
		if err != nil {
			log.Printf("AuthMiddleware: token rejected: %v request_id=%s", err, utils.RequestIDFromContext(r.Context()))
			writeUnauthorized(w)
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				// Token outlived its user
				writeUnauthorized(w)
			case r.Context().Err() != nil && errors.Is(err, r.Context().Err()):
				log.Printf("AuthMiddleware: user lookup aborted: %v request_id=%s", r.Context().Err(), utils.RequestIDFromContext(r.Context()))
				utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Service Unavailable", "Please try again later")
			case errors.Is(err, repository.ErrStoreUnavailable):
				log.Printf("AuthMiddleware: user lookup error: %v request_id=%s", err, utils.RequestIDFromContext(r.Context()))
				utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Service Unavailable", "Please try again later")
			default:
				log.Printf("AuthMiddleware: user lookup error: %v request_id=%s", err, utils.RequestIDFromContext(r.Context()))
				utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Something went wrong")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithCurrentUser(r.Context(), user)))
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", unauthorizedMessage)
}
