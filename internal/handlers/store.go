package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"POSTS_BACK-END/internal/models"
	"POSTS_BACK-END/internal/repository"
	"POSTS_BACK-END/internal/utils"
)

// UserStore is the subset of repository.UserRepository the handlers use.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash string, phoneNumber *string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// PostStore is the subset of repository.PostRepository the handlers use.
type PostStore interface {
	List(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, ownerID int64, in models.PostInput) (*models.Post, error)
	Update(ctx context.Context, id, actorID int64, in models.PostInput) (*models.Post, error)
	Delete(ctx context.Context, id, actorID int64) error
}

// TokenIssuer mints access tokens at login.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
	TTL() time.Duration
}

// writeServerError logs err with its detail and answers with a generic
// 503 or 500. A request whose context is already done is not a server fault.
func writeServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		log.Printf("%s aborted: %v request_id=%s", op, ctxErr, utils.RequestIDFromContext(r.Context()))
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Service Unavailable", "Please try again later")
		return
	}

	log.Printf("%s error: %v request_id=%s", op, err, utils.RequestIDFromContext(r.Context()))
	if errors.Is(err, repository.ErrStoreUnavailable) {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Service Unavailable", "Please try again later")
		return
	}
	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "Something went wrong")
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}
