package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "drawsheet/docs"
	"drawsheet/internal/handler"
	"drawsheet/internal/middleware"
	"drawsheet/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Session    *handler.SessionHandler
	Extraction *handler.ExtractionHandler
	Schema     *handler.SchemaHandler
	Health     *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(sessionSvc service.SessionService, h Handlers, corsOrigins []string) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public routes
	v1.POST("/sessions", h.Session.Start)
	v1.GET("/schema", h.Schema.Get)

	// Session-scoped routes
	protected := v1.Group("")
	protected.Use(middleware.SessionAuth(sessionSvc))

	protected.GET("/session", h.Session.Current)
	protected.GET("/session/export", h.Session.ExportCurrent)

	extractions := protected.Group("/extractions")
	extractions.POST("", h.Extraction.Create)
	extractions.GET("", h.Extraction.List)
	extractions.GET("/:id", h.Extraction.Get)
	extractions.GET("/:id/export", h.Extraction.Export)
	extractions.GET("/:id/drawing", h.Extraction.Drawing)

	return r
}
