package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/shot-tracker/internal/api"
	"github.com/illegalcall/shot-tracker/internal/config"
	"github.com/illegalcall/shot-tracker/internal/logger"
	"github.com/illegalcall/shot-tracker/internal/pkg/supabase"
	"github.com/illegalcall/shot-tracker/internal/storage"
	"github.com/illegalcall/shot-tracker/pkg/database"
	"github.com/illegalcall/shot-tracker/pkg/kafka"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()

	// Load configuration
	cfg := config.LoadConfig()
	log := logger.Init(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database clients
	db, err := database.NewClients(ctx, cfg.Database.URL, &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("✅ Connected to databases")

	if err := db.CreateTables(ctx); err != nil {
		log.Error("Failed to create tables", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer
	producer, err := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
	if err != nil {
		log.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	log.Info("✅ Connected to Kafka")

	auth, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key, log)
	if err != nil {
		log.Error("Failed to create auth client", "error", err)
		os.Exit(1)
	}
	if err := auth.Ping(ctx); err != nil {
		log.Warn("Auth provider not reachable yet", "error", err)
	}

	store, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.MaxSize)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Create and start server
	server := api.NewServer(cfg, db, producer, store, auth, log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	log.Info("🚀 API listening", "port", cfg.Server.Port)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("Shutting down server...")
		if err := server.Shutdown(cfg.Server.ShutdownTimeout); err != nil {
			log.Error("Server shutdown failed", "error", err)
		}
	}
	log.Info("👋 Server stopped")
}
