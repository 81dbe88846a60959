package http

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/prodscan/backend/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Page and health check
	router.GET("/", handler.Index)
	router.GET("/health", handler.HealthCheck)

	// The page posts here
	scanLimit := BodyLimitMiddleware(scanBodyLimit(cfg.Image.MaxBytes))
	router.POST("/scan", scanLimit, handler.Scan)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/scan", scanLimit, handler.Scan)
		v1.GET("/history", handler.ListHistory)
	}

	return router
}

// scanBodyLimit allows for base64 growth (4/3) plus the JSON envelope and data URL prefix
func scanBodyLimit(maxImageBytes int) int64 {
	if maxImageBytes <= 0 {
		maxImageBytes = 10 << 20
	}
	return int64(maxImageBytes)*4/3 + 4096
}
