package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/simmer-app/simmer-backend/config"
	"github.com/simmer-app/simmer-backend/internal/database"
	"github.com/simmer-app/simmer-backend/internal/repository"
	"github.com/simmer-app/simmer-backend/internal/router"
	"github.com/simmer-app/simmer-backend/internal/server"
	"github.com/simmer-app/simmer-backend/internal/service"
	"github.com/simmer-app/simmer-backend/internal/store"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the redis sync driver and the write rate limiter
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	repo, err := repository.Open(ctx, repository.Config{
		Driver:       repository.Driver(cfg.SyncDriver),
		CollectionID: cfg.SyncCollectionID,
		HubURL:       cfg.SyncHubURL,
		DocPath:      cfg.SyncDocPath,
		RedisClient:  redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to open recipe repository: %v", err)
	}
	defer repo.Close()

	st := store.New(repo)
	if err := st.Start(ctx); err != nil {
		log.Fatalf("Failed to start recipe store: %v", err)
	}

	// Image uploads need S3; without a bucket the upload endpoint reports
	// itself unavailable
	var imageService service.IImageService
	if os.Getenv("S3_BUCKET_NAME") != "" {
		s3Config, err := config.NewS3Config(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		// Uploaded images are served straight from the bucket, so it needs
		// a public-read policy. Buckets managed outside this process may
		// refuse the call; uploads still work then.
		if err := s3Config.SetupBucketPolicy(ctx); err != nil {
			log.Printf("Could not apply S3 bucket policy: %v", err)
		}
		svc, err := service.NewImageService(s3Config)
		if err != nil {
			log.Fatalf("Failed to initialize image service: %v", err)
		}
		imageService = svc
	}

	engine := router.SetupRouter(cfg, st, imageService, redisClient)

	// Create and start server
	srv := server.New(cfg, engine)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	// Gracefully shutdown the server
	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
