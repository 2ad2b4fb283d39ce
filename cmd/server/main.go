package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/focusplus/backend/internal/config"
	"github.com/focusplus/backend/internal/database"
	"github.com/focusplus/backend/internal/handlers"
	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/repository"
	"github.com/focusplus/backend/internal/router"
	"github.com/focusplus/backend/internal/services"
	"github.com/focusplus/backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Focus+ Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewStudySessionRepo(pool)
	groupRepo := repository.NewGroupRepo(pool)
	siteRepo := repository.NewBlockedSiteRepo(pool)
	appRepo := repository.NewBlockedAppRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	assistantService, err := services.NewAssistantService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, cfg.GeminiMaxOutputToks)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer assistantService.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Store, jwtAuth)
	eventService := services.NewEventService(redisClients.Store)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewStudySessionHandler(sessionRepo, eventService)
	groupHandler := handlers.NewGroupHandler(groupRepo, eventService)
	siteHandler := handlers.NewBlockedSiteHandler(siteRepo, eventService)
	appHandler := handlers.NewBlockedAppHandler(appRepo, eventService)
	chatHandler := handlers.NewChatHandler(assistantService)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		sessionHandler,
		groupHandler,
		siteHandler,
		appHandler,
		chatHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Focus+ Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
