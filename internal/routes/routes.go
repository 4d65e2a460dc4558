package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"POSTS_BACK-END/internal/handlers"
	"POSTS_BACK-END/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Posts      *handlers.PostsHandler
	Health     *handlers.HealthHandler
	GoogleAuth *handlers.GoogleAuthHandler
}

// SetupRoutes configures all application routes and wraps them with
// request id and request logging middleware.
func SetupRoutes(h Handlers, authMW *middleware.AuthMiddleware) http.Handler {
	mux := http.NewServeMux()

	// Health check routes
	mux.HandleFunc("GET /{$}", h.Health.Root)
	mux.HandleFunc("GET /healthz", h.Health.HealthCheck)
	mux.HandleFunc("GET /livez", h.Health.LivenessCheck)
	mux.HandleFunc("GET /readyz", h.Health.ReadinessCheck)

	// API docs
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Authentication routes
	mux.HandleFunc("POST /login", h.Auth.Login)
	if h.GoogleAuth != nil {
		mux.HandleFunc("GET /login/google", h.GoogleAuth.GoogleLogin)
		mux.HandleFunc("GET /login/google/callback", h.GoogleAuth.GoogleCallback)
	}

	// User routes
	mux.HandleFunc("POST /users", h.Auth.Register)
	mux.HandleFunc("GET /users/me", authMW.Require(h.Auth.Me))
	mux.HandleFunc("GET /users/{id}", authMW.Require(h.Auth.GetUser))

	// Post routes
	mux.HandleFunc("GET /posts", authMW.Require(h.Posts.ListPosts))
	mux.HandleFunc("POST /posts", authMW.Require(h.Posts.CreatePost))
	mux.HandleFunc("GET /posts/{id}", authMW.Require(h.Posts.GetPost))
	mux.HandleFunc("PUT /posts/{id}", authMW.Require(h.Posts.UpdatePost))
	mux.HandleFunc("DELETE /posts/{id}", authMW.Require(h.Posts.DeletePost))

	return middleware.RequestID(middleware.RequestLogger(mux))
}
