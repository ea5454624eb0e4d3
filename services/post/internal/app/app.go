package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snappoint/pkg/cache"
	"snappoint/pkg/config"
	"snappoint/pkg/database"
	"snappoint/pkg/jwt"
	"snappoint/pkg/logger"
	"snappoint/pkg/middleware"
	"snappoint/pkg/queue"
	postHTTP "snappoint/services/post/internal/controller/http"
	"snappoint/services/post/internal/repo/messaging"
	"snappoint/services/post/internal/repo/persistent"
	"snappoint/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client) {
	postUseCase, err := NewPostUseCase(cfg, log, db, redisClient, queueClient)
	if err != nil {
		log.Error("Failed to build post use case: %v", err)
		panic(err)
	}

	r := NewRouter(cfg, log, postHTTP.NewPostHandler(postUseCase, log), redisClient)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("Post service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down post service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Drain in-flight requests before closing their dependencies.
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	if queueClient != nil {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	_ = log.Sync()
	log.Info("Post service exited")
}

// NewPostUseCase wires repositories, the cache store, the file service and the
// summary publisher according to cfg. redisClient and queueClient may be nil.
func NewPostUseCase(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, queueClient *queue.Client) (usecase.PostUseCase, error) {
	files, err := newFileService(cfg, db, queueClient)
	if err != nil {
		return nil, err
	}

	var summary usecase.SummaryPublisher
	if queueClient != nil {
		summary = messaging.NewSummaryPublisher(queueClient, cfg.SummaryQueue)
	} else {
		log.Warn("[POST] No queue client, summary events are disabled")
	}

	gateway := cache.NewGateway(newCacheStore(cfg, log, redisClient), cfg.CacheTTL, log)

	return usecase.NewPostUseCase(
		persistent.NewPostRepository(db),
		persistent.NewBlockRepository(db),
		persistent.NewUserRepository(db),
		files,
		database.NewTransactor(db),
		gateway,
		summary,
		log,
	), nil
}

func newCacheStore(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) cache.Store {
	if cfg.CacheDriver == config.CacheDriverRedis {
		if redisClient != nil {
			return cache.NewRedisStore(redisClient)
		}
		log.Warn("[CACHE] Redis is not available, falling back to in-memory cache")
	}
	return cache.NewMemoryStore(cfg.CacheMemorySize, cfg.CacheTTL)
}

func newFileService(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) (usecase.FileService, error) {
	switch cfg.FileServiceMode {
	case config.FileServiceLocal, "":
		return persistent.NewFileRepository(db), nil
	case config.FileServiceRemote:
		if queueClient == nil {
			return nil, fmt.Errorf("file service mode %q requires RabbitMQ", cfg.FileServiceMode)
		}
		return messaging.NewFileClient(queueClient, cfg.FileQueue), nil
	default:
		return nil, fmt.Errorf("unknown file service mode %q", cfg.FileServiceMode)
	}
}

// NewRouter builds the gin engine. Writes require a JWT and are rate limited per
// user when redisClient is set.
func NewRouter(cfg *config.Config, log *logger.Logger, postHandler *postHTTP.PostHandler, redisClient *redis.Client) *gin.Engine {
	jwtService := jwt.NewService(cfg.JWTSecret)

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(jwtService))
	if redisClient != nil {
		authed.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute, log))
	}

	postHandler.RegisterRoutes(api, authed)

	return r
}
