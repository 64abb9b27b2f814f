package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"

	"todo_app/internal/api/handler"
	"todo_app/internal/api/middleware"
	"todo_app/internal/app/service"
	"todo_app/internal/common/security"
)

func NewRouter(
	tokens *security.TokenAuth,
	authService *service.AuthService,
	todoService *service.TodoService,
	rdb *redis.Client, // nil disables auth rate limiting
	authRateLimit int64,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies a bearer token when present and puts claims in context.
	// Authentication is enforced per route group by middleware.Authenticator.
	r.Use(jwtauth.Verifier(tokens.JWTAuth()))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", func(ar chi.Router) {
			ar.Use(middleware.RateLimit(rdb, authRateLimit, time.Minute))
			authHandler.RegisterRoutes(ar)
		})

		todoHandler := handler.NewTodoHandler(todoService)
		v1.Route("/todos", todoHandler.RegisterRoutes)
	})

	return r
}
