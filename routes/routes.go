package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/adityan21/campus-event-backend/config"
	"github.com/adityan21/campus-event-backend/internal/analytics"
	"github.com/adityan21/campus-event-backend/internal/auditlog"
	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/event"
	"github.com/adityan21/campus-event-backend/internal/notification"
	"github.com/adityan21/campus-event-backend/internal/registration"
	"github.com/adityan21/campus-event-backend/middleware"
)

// Deps carries the shared services the router needs beyond what it
// wires itself. The notification service is built in main so the Kafka
// consumer can share it.
type Deps struct {
	DB       *gorm.DB
	NotifSvc notification.Service
}

// Setup wires repositories, services and handlers and registers every
// route group
func Setup(r *gin.Engine, cfg *config.Config, deps Deps) {
	db := deps.DB

	// Repositories
	authRepo := auth.NewRepository(db)
	auditRepo := auditlog.NewRepository(db)
	eventRepo := event.NewRepository(db)
	regRepo := registration.NewRepository(db)

	// Services
	auditSvc := auditlog.NewService(auditRepo)
	authSvc := auth.NewService(authRepo, auditSvc, cfg)
	eventSvc := event.NewService(eventRepo, auditSvc)
	eventSvc.NotifSvc = deps.NotifSvc
	regSvc := registration.NewService(regRepo, eventRepo, auditSvc)
	regSvc.NotifSvc = deps.NotifSvc
	analyticsSvc := analytics.NewService(eventRepo, regRepo, authRepo)

	// Handlers
	authHandler := auth.NewHandler(authSvc)
	eventHandler := event.NewHandler(eventSvc)
	regHandler := registration.NewHandler(regSvc)
	analyticsHandler := analytics.NewHandler(analyticsSvc)
	notifHandler := notification.NewHandler(deps.NotifSvc)
	auditHandler := auditlog.NewHandler(auditSvc)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Public: account lifecycle and event browsing
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	api.GET("/events", eventHandler.ListEvents)
	api.GET("/events/:id", eventHandler.GetEventByID)

	// Everything below requires a valid token
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)

		// Event management (ownership enforced in the service)
		organizer := protected.Group("/events")
		organizer.Use(middleware.RequireOrganizer())
		{
			organizer.POST("", eventHandler.CreateEvent)
			organizer.PUT("/:id", eventHandler.UpdateEvent)
			organizer.DELETE("/:id", eventHandler.DeleteEvent)
		}

		regs := protected.Group("/registrations")
		{
			regs.POST("/:eventId", regHandler.Register)
			regs.GET("/mine", regHandler.Mine)
			regs.DELETE("/:id", regHandler.Cancel)
			regs.POST("/validate", middleware.RequireOrganizer(), regHandler.Validate)
			regs.GET("/export/:eventId", middleware.RequireOrganizer(), regHandler.Export)
		}

		analyticsGroup := protected.Group("/analytics")
		{
			analyticsGroup.GET("/events/:eventId", middleware.RequireOrganizer(), analyticsHandler.GetEventAnalytics)
			analyticsGroup.GET("/overview", middleware.RequireAdmin(), analyticsHandler.GetOverview)
		}

		notifGroup := protected.Group("/notifications")
		{
			notifGroup.GET("", notifHandler.ListMine)
			notifGroup.PATCH("/:id/read", notifHandler.MarkRead)
		}

		auditGroup := protected.Group("/auditlogs")
		auditGroup.Use(middleware.RequireAdmin())
		{
			auditGroup.GET("", auditHandler.GetAuditLogs)
			auditGroup.GET("/:id", auditHandler.GetAuditLogByID)
		}
	}
}
