package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/simmer-app/simmer-backend/config"
	"github.com/simmer-app/simmer-backend/internal/api"
	"github.com/simmer-app/simmer-backend/internal/middleware"
	"github.com/simmer-app/simmer-backend/internal/service"
	"github.com/simmer-app/simmer-backend/internal/store"
)

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, st *store.Store, imageService service.IImageService, redisClient *redis.Client) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Collection mutations are throttled when rate limiting is enabled
	var writeLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled && redisClient != nil {
		writeLimiter = middleware.NewWriteRateLimiter(redisClient)
	}

	api.SetupAPI(router, st, imageService, writeLimiter)

	return router
}
