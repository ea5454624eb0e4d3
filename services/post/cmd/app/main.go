package main

import (
	"snappoint/pkg/cache"
	"snappoint/pkg/config"
	"snappoint/pkg/database"
	"snappoint/pkg/logger"
	"snappoint/pkg/queue"
	postApp "snappoint/services/post/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

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

	var redisClient *redis.Client
	if cfg.CacheDriver == config.CacheDriverRedis {
		redisClient, err = cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("Failed to connect to redis: %v", err)
			panic(err)
		}
	}

	// Summary events and remote file calls need RabbitMQ
	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		queueClient = nil
	}

	postApp.Run(cfg, log, db, redisClient, queueClient)
}
