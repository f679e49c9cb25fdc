package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/illegalcall/shot-tracker/internal/config"
	"github.com/illegalcall/shot-tracker/internal/logger"
	"github.com/illegalcall/shot-tracker/internal/storage"
	"github.com/illegalcall/shot-tracker/internal/worker"
	"github.com/illegalcall/shot-tracker/pkg/database"
	"github.com/illegalcall/shot-tracker/pkg/kafka"
)

func main() {
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

	// Initialize Kafka consumer
	consumer, err := kafka.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Group)
	if err != nil {
		log.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()
	log.Info("✅ Connected to Kafka")

	store, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.MaxSize)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Create and start worker
	w := worker.NewWorker(cfg, db, store, consumer, log)
	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("Worker error", "error", err)
		os.Exit(1)
	}
	log.Info("👋 Worker stopped")
}
