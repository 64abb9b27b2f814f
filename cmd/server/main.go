package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo_app/internal/api"
	"todo_app/internal/app/service"
	"todo_app/internal/common/security"
	"todo_app/internal/domain/repository"
	"todo_app/internal/platform/cache"
	"todo_app/internal/platform/config"
	"todo_app/internal/platform/database"
	"todo_app/internal/platform/mail"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize JWT
	tokens := security.NewTokenAuth(cfg.JWTSecret, cfg.JWTExp)

	// 3. Initialize Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}

	// 4. Initialize Redis. Auth works without it; only the rate limiter
	// is lost, so a missing Redis is a warning rather than a fatal.
	rdb, err := cache.Connect(cfg)
	if err != nil {
		log.Printf("WARN: Redis unavailable, auth rate limiting disabled: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
		log.Println("Redis connected.")
	}

	// 5. Initialize Mailer (optional)
	var mailer *mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender)
		log.Println("Mailer configured.")
	}

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	todoRepo := repository.NewPgTodoRepository(db)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, tokens, mailer)
	todoService := service.NewTodoService(todoRepo)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(tokens, authService, todoService, rdb, int64(cfg.AuthRateLimitPerMinute))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
