package http

import (
	"github.com/gin-gonic/gin"

	"github.com/neuralsearch/backend/config"
)

// SetupRouter creates and configures the Gin router. The endpoint paths are
// the service's public contract and are mounted at the root, not under a
// version prefix.
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestLogger())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.POST("/train", handler.Train)
	router.GET("/search", handler.Search)
	router.GET("/status", handler.Status)
	router.GET("/shops", handler.ListShops)

	return router
}
