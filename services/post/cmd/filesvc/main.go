package main

import (
	"context"
	"os/signal"
	"syscall"

	"snappoint/pkg/config"
	"snappoint/pkg/database"
	"snappoint/pkg/logger"
	"snappoint/pkg/queue"
	"snappoint/services/post/internal/repo/messaging"
	"snappoint/services/post/internal/repo/persistent"
)

// filesvc answers files.* commands on FILE_QUEUE for posts services running with
// FILE_SERVICE_MODE=remote.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	db, err := database.Open(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := messaging.NewFileServer(persistent.NewFileRepository(db))
	log.Info("File service consuming %s", cfg.FileQueue)
	if err := queueClient.Serve(ctx, cfg.FileQueue, server.Handle); err != nil {
		log.Error("File service stopped: %v", err)
	}

	log.Info("Shutting down file service...")
	if err := queueClient.Close(); err != nil {
		log.Error("Error closing RabbitMQ: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}
	_ = log.Sync()
}
