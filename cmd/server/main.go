package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medihelp/internal/config"
	"medihelp/internal/handlers"
	"medihelp/internal/middleware"
	"medihelp/internal/repositories/mongodb"
	"medihelp/internal/services"
	"medihelp/pkg/cache"
	"medihelp/pkg/database"
	"medihelp/pkg/logger"
	"medihelp/pkg/mailer"
	"medihelp/pkg/maps"
	"medihelp/pkg/sms"
	ws "medihelp/pkg/websocket"
	"medihelp/routes"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(&logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		panic(err)
	}

	db, err := database.NewMongoDB(&database.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Name,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	cancelIndexes()

	var cacheService services.CacheService
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.WithError(err).Warn("redis unavailable, running without cache")
		} else {
			cacheService = redisCache
			defer redisCache.Close()
		}
	}

	// Repositories
	conversationRepo := mongodb.NewConversationRepository(db.Database, cacheService)
	userRepo := mongodb.NewUserRepository(db.Database)
	emergencyRepo := mongodb.NewEmergencyRepository(db.Database)
	hospitalRepo := mongodb.NewHospitalRepository(db.Database, cacheService)

	// Outbound transports. All optional: a disabled transport degrades to
	// logged delivery failures, never to request errors.
	var emailSender mailer.Mailer
	if cfg.SMTP.Enabled {
		emailSender = mailer.NewSMTPMailer(&mailer.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromEmail: cfg.SMTP.From,
			FromName:  cfg.SMTP.FromName,
		})
	}

	var smsProvider sms.Provider
	if cfg.SMS.Enabled {
		switch cfg.SMS.Provider {
		case "sns":
			smsProvider, err = sms.NewAWSSNSProvider(cfg.SMS.AWSRegion)
			if err != nil {
				log.WithError(err).Warn("AWS SNS unavailable, SMS disabled")
			}
		default:
			smsProvider = sms.NewTwilioProvider(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.FromNumber)
		}
	}

	var geocoder maps.Geocoder
	if cfg.Maps.Enabled {
		geocoder, err = maps.NewGoogleMapsProvider(cfg.Maps.APIKey)
		if err != nil {
			log.WithError(err).Warn("Google Maps unavailable, reverse geocoding disabled")
		}
	}

	// Services
	notificationService := services.NewNotificationService(emailSender, smsProvider, log, cfg.Emergency.SendTimeout)
	chatService := services.NewChatService(conversationRepo, userRepo, log)
	emergencyService := services.NewEmergencyService(emergencyRepo, hospitalRepo, userRepo, notificationService, geocoder, log, cfg.Emergency.HospitalRadiusKM)

	// Realtime hub
	hub := ws.NewHub(userRepo, log)
	go hub.Run()

	verifyToken := func(token string) (primitive.ObjectID, string, error) {
		return middleware.VerifyToken(cfg.Security.JWTSecret, token)
	}
	wsHandler := ws.NewHandler(hub, conversationRepo, verifyToken, cfg.WebSocket.AllowedOrigins)

	// Handlers
	chatHandler := handlers.NewChatHandler(chatService, hub)
	emergencyHandler := handlers.NewEmergencyHandler(emergencyService, cfg.Emergency.HospitalRadiusKM)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	authRequired := middleware.AuthRequired(cfg.Security.JWTSecret)
	api := router.Group("/api/v1")
	routes.SetupChatRoutes(api, chatHandler, authRequired)
	routes.SetupEmergencyRoutes(api, emergencyHandler, authRequired)
	routes.SetupWebSocketRoutes(router, wsHandler)

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		log.Infof("%s listening on :%s", cfg.App.Name, cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}

	// Let in-flight emergency dispatches finish before the process exits.
	emergencyService.WaitForDispatches()

	log.Info("server stopped")
}
