package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/onlinecourse-service/internal/auth"
	"github.com/SAP-F-2025/onlinecourse-service/internal/config"
	"github.com/SAP-F-2025/onlinecourse-service/internal/events"
	"github.com/SAP-F-2025/onlinecourse-service/internal/handlers"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/onlinecourse-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/onlinecourse-service/internal/services"
	"github.com/SAP-F-2025/onlinecourse-service/internal/telemetry"
	"github.com/SAP-F-2025/onlinecourse-service/internal/utils"
	"github.com/SAP-F-2025/onlinecourse-service/internal/validator"
	"github.com/SAP-F-2025/onlinecourse-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(rootCtx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, running without cache", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	cacheManager := repoManager.CacheManager()

	// Session tokens; the revocation list lives in Redis when there is one
	var revocations auth.RevocationStore
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(cacheManager.Session)
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer, revocations)

	publisher, err := newPublisher(rootCtx, cfg.Kafka, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event publisher: %v", err)
	}

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewDefaultServiceManager(db, repoManager.GetRepository(), slogLogger, validator, publisher, tokens)
	if err := serviceManager.Initialize(rootCtx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	var resolver handlers.IdentityResolver = handlers.NewTokenResolver(tokens)
	if strings.EqualFold(cfg.Auth.Provider, config.AuthProviderCasdoor) {
		client := casdoor.NewCasdoorClient(cfg.Casdoor)
		resolver = handlers.NewExternalResolver(casdoor.NewUserCasdoor(client, repoManager.GetRepository().User(), cacheManager), tokens)
		logger.Info("Using casdoor identity provider", "endpoint", cfg.Casdoor.Endpoint)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, resolver, logger)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Closes the event publisher
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	stop()

	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	if err := shutdownTelemetry(ctx); err != nil {
		logger.Error("Failed to flush traces", "error", err)
	}

	logger.Info("Server exited")
}

// newPublisher publishes to Kafka when brokers are configured, otherwise in process
// with a subscriber that logs every event
func newPublisher(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.Brokers) > 0 {
		return events.NewKafkaPublisher(cfg.Brokers, cfg.TopicPrefix, logger)
	}

	publisher, pubSub := events.NewGoChannelPublisher(cfg.TopicPrefix, logger)
	if err := events.LogEvents(ctx, pubSub, cfg.TopicPrefix, logger); err != nil {
		_ = publisher.Close()
		return nil, err
	}
	return publisher, nil
}
