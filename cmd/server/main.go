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

	"lexica-backend/internal/config"
	"lexica-backend/internal/database"
	"lexica-backend/internal/handlers"
	"lexica-backend/internal/middleware"
	"lexica-backend/internal/repository"
	"lexica-backend/internal/router"
	"lexica-backend/internal/services"
	"lexica-backend/internal/websocket"
	"lexica-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Lexica Backend...")

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
	deckRepo := repository.NewDeckRepo(pool)
	cardRepo := repository.NewCardRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	progressionRepo := repository.NewProgressionRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)
	learningService := services.NewLearningService(cardRepo, progressRepo, cfg.Engine, cfg.WriteRetries)
	progressionService := services.NewProgressionService(progressionRepo, redisClients.Queue, cfg.Engine, cfg.WriteRetries)
	selectorService := services.NewSelectorService(deckRepo, cardRepo, progressRepo, progressionRepo, cfg.Engine)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	deckHandler := handlers.NewDeckHandler(deckRepo, cardRepo, progressRepo)
	cardHandler := handlers.NewCardHandler(deckRepo, cardRepo, redisClients.Queue)
	sessionHandler := handlers.NewSessionHandler(selectorService, learningService, progressionService)
	progressionHandler := handlers.NewProgressionHandler(progressionService)

	// ──── Step 5: Start Classification Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, cardRepo, deckRepo, cfg.Engine, cfg.ClassificationWorkers)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.ClassificationWorkers)

	reminderScheduler := services.NewReminderScheduler(progressionRepo, redisClients.Queue)
	reminderScheduler.Start()
	log.Println("✓ Reminder scheduler started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		deckHandler,
		cardHandler,
		sessionHandler,
		progressionHandler,
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
		workerPool.Stop()
		reminderScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Lexica Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
