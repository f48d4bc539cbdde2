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

	"quiz-backend/internal/config"
	"quiz-backend/internal/database"
	"quiz-backend/internal/handlers"
	"quiz-backend/internal/middleware"
	"quiz-backend/internal/repository"
	"quiz-backend/internal/router"
	"quiz-backend/internal/services"
	"quiz-backend/internal/session"
	"quiz-backend/internal/websocket"
	"quiz-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Quiz Backend...")

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
	if err := database.RunMigrations(pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	quizRepo := repository.NewQuizRepo(pool)
	userRepo := repository.NewUserRepo(pool)
	resultRepo := repository.NewResultRepo(pool)

	// ──── Step 5: Initialize Google Identity Verifier ────
	verifier, err := services.NewGoogleVerifier(context.Background(), cfg.GoogleClientID)
	if err != nil {
		log.Fatalf("✗ Google identity verifier initialization failed: %v", err)
	}
	log.Println("✓ Google identity verifier initialized")

	// ──── Initialize Services ────
	sessionStore := session.NewStore(
		session.NewRedisBackend(redisClients.Store),
		cfg.SessionSecret,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		cfg.SecureCookies,
	)
	quizService := services.NewQuizService(quizRepo)
	authService := services.NewAuthService(verifier, userRepo)
	resultQueue := services.NewResultQueue(redisClients.Store)

	// ──── Initialize Handlers ────
	quizHandler := handlers.NewQuizHandler(quizService, sessionStore, resultQueue)
	authHandler := handlers.NewAuthHandler(authService, sessionStore, cfg.GoogleClientID)
	resultHandler := handlers.NewResultHandler(resultRepo)
	userHandler := handlers.NewUserHandler(userRepo)

	// ──── Step 6: Start Result Worker Pool ────
	workerPool := worker.NewPool(resultQueue, resultRepo, quizRepo, cfg.ResultWorkers)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.ResultWorkers)

	// ──── Step 7: Start WebSocket Hub ────
	hubCtx, stopHub := context.WithCancel(context.Background())
	wsHub := websocket.NewHub(redisClients.PubSub, services.ResultsFeedChannel)
	go wsHub.Run(hubCtx)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	r := router.New(sessionStore, authLimiter, quizHandler, authHandler, resultHandler, userHandler, wsHub)

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
		stopHub()
		authLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Quiz Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  Sign in: http://localhost:%s/sign-in", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
