package main

import (
	"log"
	"net/http"
	"time"

	"assessment-service/internal/config"
	"assessment-service/internal/db"
	"assessment-service/internal/event"
	"assessment-service/internal/fallback"
	"assessment-service/internal/generation"
	"assessment-service/internal/handlers"
	"assessment-service/internal/provider"
	"assessment-service/internal/repository"
	"assessment-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db.InitMongo(cfg.MongoURI)
	database := db.Client.Database(cfg.MongoDatabase)

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, lifecycle events will not be published")
	}

	// Content provider gateway and generation engine
	providerClient := provider.NewClient(
		cfg.ProviderBaseURL,
		cfg.ProviderAPIKey,
		cfg.ProviderModel,
		time.Duration(cfg.ProviderTimeoutSeconds)*time.Second,
	)
	bank := fallback.NewBank()
	engine := generation.NewEngine(providerClient, bank, cfg.BatchSize)

	// Repositories, services, handlers
	sessionRepo := repository.NewSessionRepository(database)
	reportRepo := repository.NewReportRepository(database)

	sessionService := service.NewSessionService(sessionRepo, engine, publisher, cfg)
	reportService := service.NewReportService(sessionRepo, reportRepo)

	sessionHandler := handlers.NewSessionHandler(sessionService)
	reportHandler := handlers.NewReportHandler(reportService)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	setupRoutes(r, sessionHandler, reportHandler)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

func setupRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler, reportHandler *handlers.ReportHandler) {
	// Public routes: polling endpoints the candidate UI hits without auth.
	publicSession := r.Group("/public/assessment/session")
	{
		publicSession.GET("/:id", sessionHandler.GetSession)
		publicSession.GET("/:id/status", sessionHandler.GetSessionStatus)
	}

	publicUser := r.Group("/public/assessment/user")
	{
		publicUser.GET("/:id/reports", reportHandler.GetReportsByUser)
	}

	// Protected routes require the X-User-ID header set by the auth layer.
	protectedSession := r.Group("/protected/assessment/session")
	protectedSession.Use(requireUserID())
	{
		protectedSession.POST("/", sessionHandler.CreateSession)
		protectedSession.POST("/:id/submit", sessionHandler.SubmitAnswers)
		protectedSession.GET("/:id/report", reportHandler.GetReport)
	}
}

func requireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
