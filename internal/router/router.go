package router

import (
	"net/http"

	_ "travelapproval/api/swagger" // swagger docs
	"travelapproval/internal/config"
	"travelapproval/internal/handler"
	"travelapproval/internal/logger"
	"travelapproval/internal/metrics"
	"travelapproval/internal/middleware"
	"travelapproval/internal/validation"
	"travelapproval/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups every route module mounted on the engine.
type Handlers struct {
	User          *handler.UserHandler
	TravelRequest *handler.TravelRequestHandler
	Approval      *handler.ApprovalHandler
	Notification  *handler.NotificationHandler
	Audit         *handler.AuditHandler
	Project       *handler.ProjectHandler
	TAccount      *handler.TAccountHandler
	Report        *handler.ReportHandler
}

// New builds the gin engine with ops endpoints, the websocket endpoint and
// every API route.
func New(cfg *config.Config, auth *middleware.Auth, hub *websocket.Hub, handlers *Handlers) *gin.Engine {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Same rules for bound request bodies as for service-side validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterRules(v)
	}

	metrics.Init()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Get()))
	router.Use(metrics.Instrument())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(hub, auth, c)
	})

	// API Routing
	root := router.Group("")
	handlers.User.RegisterRoutes(root)
	handlers.TravelRequest.RegisterRoutes(root)
	handlers.Approval.RegisterRoutes(root)
	handlers.Notification.RegisterRoutes(root)
	handlers.Audit.RegisterRoutes(root)
	handlers.Project.RegisterRoutes(root)
	handlers.TAccount.RegisterRoutes(root)
	handlers.Report.RegisterRoutes(root)

	return router
}
