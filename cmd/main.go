package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adityan21/campus-event-backend/config"
	"github.com/adityan21/campus-event-backend/database"
	"github.com/adityan21/campus-event-backend/internal/auditlog"
	"github.com/adityan21/campus-event-backend/internal/auth"
	"github.com/adityan21/campus-event-backend/internal/event"
	"github.com/adityan21/campus-event-backend/internal/notification"
	"github.com/adityan21/campus-event-backend/internal/registration"
	"github.com/adityan21/campus-event-backend/middleware"
	"github.com/adityan21/campus-event-backend/routes"
	"github.com/adityan21/campus-event-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Redis (password reset tokens)
	utils.InitRedis(cfg)

	// Init Kafka (registration fanout, optional)
	utils.InitKafka(cfg)

	// Init SMTP (reset links, registration emails)
	utils.InitMailer(cfg)

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&event.Event{},
		&event.EventAnalytics{},
		&registration.Registration{},
		&notification.InAppNotification{},
		&auditlog.AuditLog{},
	); err != nil {
		log.Fatalf("❌ DB AutoMigrate failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// Notification service is shared between the router and the Kafka
	// consumer, so it's built here
	authRepo := auth.NewRepository(db)
	notifRepo := notification.NewRepository(db)
	notifSvc := notification.NewService(notifRepo, authRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if utils.KafkaEnabled() {
		go notification.StartKafkaConsumer(ctx, cfg, notifSvc)
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173", "http://127.0.0.1:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With", "Cache-Control", "Pragma"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", "Cache-Control", "Pragma", "Expires"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.AuditMiddleware())
	router.Use(middleware.RateLimiter())

	routes.Setup(router, cfg, routes.Deps{DB: db, NotifSvc: notifSvc})

	fmt.Printf("🚀 Server starting on port %s\n", cfg.Port)

	go func() {
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	fmt.Println("🛑 Shutting down...")
	utils.CloseKafka()
}
