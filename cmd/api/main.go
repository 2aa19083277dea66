package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/handlers"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/api/routes"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/config"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/events"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/repository/postgres"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/lifecycle"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/matching"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/payments"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/service/tracking"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/cache"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/database"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/monitoring"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Corporate Rideshare Platform",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp, _ = monitoring.New(monitoring.Config{})
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized",
			logger.String("app_name", cfg.NewRelic.AppName))
	}
	defer nrApp.Shutdown(10 * time.Second)

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer cache.Close(redisClient)

	appLogger.Info("Connected to Redis successfully")

	// Initialize PostgreSQL
	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
		MaxIdle:  cfg.Database.MaxIdle,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer db.Close()

	appLogger.Info("Connected to PostgreSQL successfully")

	// Ride event stream; a no-op publisher keeps the lifecycle wiring
	// uniform when Kafka is not configured.
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		appLogger.Info("Kafka ride event stream enabled",
			logger.String("topic", cfg.Kafka.Topic))
	}

	// Repositories
	rideRepo := postgres.NewRideRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	userRepo := postgres.NewUserRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	// Realtime hub
	hub := realtime.NewHub(appLogger)

	// Services
	processor := payments.NewSimulator(cfg.Fare, appLogger)
	notifier := notification.NewService(notificationRepo, tokenRepo, hub, &notification.LogDispatcher{Log: appLogger}, appLogger)
	rideService := lifecycle.NewService(rideRepo, requestRepo, userRepo, processor, processor, notifier, hub, publisher, nrApp, appLogger)
	matcher := matching.NewMatcher(rideRepo, cfg.Matching, appLogger)
	tracker := tracking.NewTracker(locationRepo, rideRepo, requestRepo, userRepo, redisClient, appLogger)

	verifier := auth.NewRedisVerifier(redisClient)

	h := handlers.NewHandlers(rideService, matcher, tracker, notifier, processor, hub, verifier, cfg.Hub, appLogger)

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	routes.SetupRoutes(router, h, nrApp, cfg.CORS)

	appLogger.Info("Routes configured successfully")

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}
