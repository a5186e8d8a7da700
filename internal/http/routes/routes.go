package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-normalizer/internal/http/handlers"
	"github.com/phambaophuc/photo-normalizer/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	logger       *zap.Logger
	maxUpload    int64
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
	maxUpload int64,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		logger:       logger,
		maxUpload:    maxUpload,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = r.maxUpload

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)
		v1.GET("/settings", r.imageHandler.GetSettings)

		images := v1.Group("/images")
		{
			uploads := images.Group("", middleware.RequireMultipart())
			uploads.POST("/upload", r.imageHandler.UploadImage)
			uploads.POST("/resize", r.imageHandler.ResizeImage)
			uploads.POST("/thumbnail", r.imageHandler.CreateThumbnail)
			uploads.POST("/inspect", r.imageHandler.InspectImage)

			images.POST("/jobs", r.imageHandler.SubmitJob)
			images.GET("/jobs/:id", r.imageHandler.GetJob)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Photo normalizer is running",
		})
	})

	return router
}
