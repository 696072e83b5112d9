package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simmer-app/simmer-backend/internal/middleware"
	"github.com/simmer-app/simmer-backend/internal/service"
	"github.com/simmer-app/simmer-backend/internal/store"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Simmer API is running",
		"version": "v1.0.0",
	})
}

// SetupAPI registers all API routes. The image service and rate limiter are
// optional; the matching routes degrade when they are absent.
func SetupAPI(router *gin.Engine, st *store.Store, imageService service.IImageService, writeLimiter *middleware.RateLimiter) {
	// Health check endpoint
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	// Create handlers
	recipeHandler := NewRecipeHandler(st, imageService, writeLimiter)
	uiHandler := NewUIHandler(st)

	// Register routes
	v1 := router.Group("/api/v1")
	recipeHandler.RegisterRoutes(v1)
	uiHandler.RegisterRoutes(v1)

	// Rate limit status endpoint
	if writeLimiter != nil {
		RegisterRateLimitRoutes(v1, writeLimiter)
	}
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, writeLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	{
		rateLimits.GET("/writes", func(c *gin.Context) {
			remaining, resetTime, err := writeLimiter.GetRemainingRequests(c.Request.Context(), c.ClientIP())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"remaining":  remaining,
				"reset_time": resetTime.Unix(),
				"window":     "1m",
			})
		})
	}
}
