package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/sima-oba/auth-service/configs"
	"github.com/sima-oba/auth-service/internal/application/services"
	"github.com/sima-oba/auth-service/internal/core/ports"
	"github.com/sima-oba/auth-service/internal/infrastructure/db"
	"github.com/sima-oba/auth-service/internal/infrastructure/email"
	"github.com/sima-oba/auth-service/internal/infrastructure/health"
	"github.com/sima-oba/auth-service/internal/infrastructure/httpserver"
	"github.com/sima-oba/auth-service/internal/infrastructure/redis"
	"github.com/sima-oba/auth-service/internal/infrastructure/repositories"
	"github.com/sima-oba/auth-service/internal/infrastructure/stream"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting auth service...")

	// Initialize database
	database, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Repositories
	identityRepo := repositories.NewIdentityRepository(database, logger)
	dbTokenRepo := repositories.NewTokenDBRepository(database, logger)
	redisCache := redis.NewRedisCache(redisClient, "appcache")
	tokenRepo := repositories.NewCachingTokenRepository(dbTokenRepo, redisCache, 30*time.Minute, logger)

	// Notifier, per configured mode
	var notifier ports.Notifier
	switch cfg.Notification.Mode {
	case "stream":
		notifier = stream.NewNotifier(&stream.NotifierConfig{
			Stream:                    cfg.Stream.NotificationStream,
			URLEmailVerification:      cfg.Notification.URLEmailVerification,
			URLOwnerEmailVerification: cfg.Notification.URLOwnerEmailVerification,
			URLResetPassword:          cfg.Notification.URLResetPassword,
		}, redisClient, logger)
	default:
		notifier, err = email.NewNotifier(&email.Config{
			APIKey:                    cfg.Notification.SendGridAPIKey,
			FromEmail:                 cfg.Notification.FromEmail,
			FromName:                  cfg.Notification.FromName,
			URLEmailVerification:      cfg.Notification.URLEmailVerification,
			URLOwnerEmailVerification: cfg.Notification.URLOwnerEmailVerification,
			URLResetPassword:          cfg.Notification.URLResetPassword,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize email notifier:", err)
		}
	}

	// Services
	tokenService := services.NewTokenService(tokenRepo, logger)
	accountService := services.NewAccountService(identityRepo, tokenService, notifier, logger)
	registrationService := services.NewRegistrationService(identityRepo, tokenService, notifier, logger)
	ownerImporter := services.NewOwnerImportService(identityRepo, tokenService, notifier, logger)

	// Owner stream consumer
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	consumer := stream.NewOwnerConsumer(&stream.ConsumerConfig{
		Stream:       cfg.Stream.OwnerStream,
		Group:        cfg.Stream.Group,
		Consumer:     cfg.Stream.Consumer,
		BatchSize:    cfg.Stream.BatchSize,
		BlockTimeout: cfg.Stream.BlockTimeout,
		ClaimMinIdle: cfg.Stream.ClaimMinIdle,
	}, redisClient, ownerImporter, logger)

	go func() {
		if err := consumer.Run(consumerCtx); err != nil && consumerCtx.Err() == nil {
			logger.Fatal("Owner consumer failed:", err)
		}
	}()

	ownerPublisher := stream.NewOwnerPublisher(cfg.Stream.OwnerStream, redisClient)

	hcSlice := []ports.HealthChecker{
		health.NewDBHealthChecker(database),
		health.NewRedisHealthChecker(redisClient),
	}

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Environment:    cfg.Server.Environment,
	}

	deps := httpserver.ServerDeps{
		AccountService:      accountService,
		RegistrationService: registrationService,
		OwnerPublisher:      ownerPublisher,
		HealthCheckers:      hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
