package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/whats-cookin/internal/ai"
	"github.com/dom/whats-cookin/internal/api"
	"github.com/dom/whats-cookin/internal/config"
	"github.com/dom/whats-cookin/internal/logger"
	"github.com/dom/whats-cookin/internal/metrics"
	"github.com/dom/whats-cookin/internal/repository/postgres"
	"github.com/dom/whats-cookin/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	defer zlog.Sync()

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment(), zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	m := metrics.New()

	// Initialize AI gateway
	client := ai.NewClient(ai.ClientOptions{
		BaseURL:    cfg.OpenAIBaseURL,
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.OpenAIModel,
		Timeout:    cfg.AITimeout,
		MaxRetries: cfg.AIMaxRetries,
	}, zlog.Named("ai"))
	gateway := ai.NewGateway(client, m, zlog.Named("ai"))

	// Initialize services
	services := service.NewServices(repos, gateway, cfg, m)

	// Initialize router
	router := api.NewRouter(services, cfg, m, zlog.Named("http"))

	// AI calls may run for the whole provider timeout, once per attempt.
	writeTimeout := 60 * time.Second
	if budget := cfg.AITimeout*time.Duration(cfg.AIMaxRetries+1) + 15*time.Second; budget > writeTimeout {
		writeTimeout = budget
	}

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zlog.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("ai_model", cfg.OpenAIModel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	zlog.Info("server stopped")
}
