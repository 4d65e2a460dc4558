package utils

import (
	"context"

	"POSTS_BACK-END/internal/models"
)

type ctxKey string

const (
	userCtxKey      ctxKey = "current_user"
	requestIDCtxKey ctxKey = "request_id"
)

// WithCurrentUser binds the authenticated user to a request context.
func WithCurrentUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// CurrentUserFromContext returns the user bound by the auth middleware.
func CurrentUserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok && u != nil
}

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	u, ok := CurrentUserFromContext(ctx)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey).(string)
	return id
}
