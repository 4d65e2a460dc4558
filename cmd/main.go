// @title Posts Backend API
// @version 1.0
// @description Posts CRUD API with bearer-token authentication

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"POSTS_BACK-END/docs" // This is required for swagger
	"POSTS_BACK-END/internal/config"
	"POSTS_BACK-END/internal/handlers"
	"POSTS_BACK-END/internal/middleware"
	"POSTS_BACK-END/internal/repository"
	"POSTS_BACK-END/internal/routes"
)

// connectDB opens the pool, pings it at boot and applies the schema when
// DB_AUTO_MIGRATE is set.
func connectDB(cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := repository.NewPool(ctx, cfg.GetDSN(), cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Println("Database schema ensured")
	}
	return pool, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	pool, err := connectDB(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	// --- HTTP Handlers ---

	users := repository.NewUserRepository(pool)
	posts := repository.NewPostRepository(pool)
	tokens := middleware.NewTokenService(&cfg.JWT)

	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(users, tokens),
		Posts:      handlers.NewPostsHandler(posts),
		Health:     handlers.NewHealthHandler(pool),
		GoogleAuth: handlers.NewGoogleAuthHandler(users, tokens, cfg),
	}
	router := routes.SetupRoutes(h, middleware.NewAuthMiddleware(tokens, users))

	docs.SwaggerInfo.Host = "localhost:" + cfg.Server.Port

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(c.Handler(router), "posts-backend"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	// Wait for SIGINT/SIGTERM to shut down gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped.")
}
