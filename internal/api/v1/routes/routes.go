package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/middleware"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/api/v1/handlers"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/job"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/search"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/upload"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/app/storage/vector"
)

// ServiceContainer carries the application services the route handlers need
type ServiceContainer struct {
	Understanding *job.UnderstandingManager
	Embedding     *job.EmbeddingManager
	Search        *search.Coordinator
	Uploads       upload.Service
	Sinks         []vector.Sink
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	router.Use(middleware.RequestID())

	videoHandler := handlers.NewVideoHandler(container.Uploads)
	router.POST("/upload", videoHandler.Upload)
	router.GET("/video-url", videoHandler.PlaybackURL)

	analyzeHandler := handlers.NewAnalyzeHandler(container.Understanding)
	router.POST("/analyze", analyzeHandler.Submit)
	router.GET("/analyze/:id", analyzeHandler.Poll)

	embedHandler := handlers.NewEmbedHandler(container.Embedding)
	router.POST("/embed", embedHandler.Submit)
	router.GET("/embed/status", embedHandler.Poll)

	searchHandler := handlers.NewSearchHandler(container.Search)
	router.GET("/search", searchHandler.Search)

	adminHandler := handlers.NewAdminHandler(container.Sinks)
	router.POST("/flush", adminHandler.Flush)
}
