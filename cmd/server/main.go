package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/application"
	"github.com/ceavinrufus/stay-backend/internal/auth"
	"github.com/ceavinrufus/stay-backend/internal/cache"
	"github.com/ceavinrufus/stay-backend/internal/config"
	"github.com/ceavinrufus/stay-backend/internal/database"
	"github.com/ceavinrufus/stay-backend/internal/events"
	"github.com/ceavinrufus/stay-backend/internal/handler"
	"github.com/ceavinrufus/stay-backend/internal/identity"
	"github.com/ceavinrufus/stay-backend/internal/logger"
	"github.com/ceavinrufus/stay-backend/internal/middleware"
	"github.com/ceavinrufus/stay-backend/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "stay-backend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting stay-backend",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(&repository.ReservationModel{}, &repository.DisputeModel{}, &repository.ListingModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to Redis (token revocation + verification sessions)
	redisCache, err := cache.New(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = redisCache.Close() }()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	// Initialize Kafka producer
	kafkaProducer := events.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	reservationRepo := repository.NewGormReservationRepository(db)
	disputeRepo := repository.NewGormDisputeRepository(db)
	listingRepo := repository.NewGormListingRepository(db)

	// Initialize application services
	reservationService := application.NewReservationService(reservationRepo, listingRepo, kafkaProducer, log)
	disputeService := application.NewDisputeService(disputeRepo, reservationRepo, kafkaProducer, log)
	listingService := application.NewListingService(listingRepo, log)

	identityClient := identity.NewHTTPClient(cfg.Identity.BaseURL, cfg.Identity.Token)
	identityService := application.NewIdentityService(
		identityClient,
		redisCache,
		cfg.Identity.PollInterval,
		cfg.Identity.PollTimeout,
		log,
	)

	// Start the settlement event consumer in a goroutine
	settlementConsumer := events.NewSettlementConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupID,
		reservationService,
		disputeService,
		log,
	)
	defer func() { _ = settlementConsumer.Close() }()

	go func() {
		log.Info("starting settlement event consumer")
		if err := settlementConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("settlement event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	reservationHandler := handler.NewReservationHandler(reservationService)
	disputeHandler := handler.NewDisputeHandler(disputeService)
	listingHandler := handler.NewListingHandler(listingService)
	identityHandler := handler.NewIdentityHandler(identityService)
	adminHandler := handler.NewAdminHandler(reservationService)

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := handler.NewHealthHandler(db)
	healthHandler.RegisterRoutes(router)

	// Register API routes
	api := router.Group("/api/v1")
	reservationHandler.RegisterRoutes(api, jwtManager, redisCache, log)
	disputeHandler.RegisterRoutes(api, jwtManager, redisCache, log)
	listingHandler.RegisterRoutes(api, jwtManager, redisCache, log)
	identityHandler.RegisterRoutes(api, jwtManager, redisCache, log)
	adminHandler.RegisterRoutes(api, jwtManager, redisCache, log)

	// Create HTTP server
	// WriteTimeout must cover the identity long-poll endpoint, which can hold
	// the response open for up to the configured poll timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Identity.PollTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down stay-backend...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("stay-backend stopped")
}
