package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "docintel/docs"
	"docintel/internal/handler"
	"docintel/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	docH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	docs := v1.Group("/documents")
	docs.POST("", docH.Process)
	docs.GET("", docH.List)
	docs.GET("/:id", docH.GetByID)
	docs.DELETE("/:id", docH.Delete)
	docs.PUT("/:id/abstract", docH.RecomputeAbstract)
	docs.GET("/:id/export/csv", docH.ExportKeyValuesCSV)
	docs.GET("/:id/export/xlsx", docH.ExportTablesXLSX)
	docs.GET("/:id/source", docH.SourceURL)

	return r
}
