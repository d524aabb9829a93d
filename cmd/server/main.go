package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"travel/internal/app"
	"travel/internal/config"
	"travel/internal/gateway"
	"travel/internal/handler"
	internalRedis "travel/internal/redis"
	"travel/internal/repository/postgres"
	"travel/internal/service"
)

func main() {
	cfg := config.Load()

	logger := app.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	if cfg.Gateway.SecretKey == "" {
		logger.Warn("payment gateway secret key is not set; gateway calls will be rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first so the database and Redis clients are instrumented.
	nrApp := app.NewNewRelicApp(cfg.NewRelic, logger)

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	server := wireServer(db, redisClient, nrApp, cfg, logger)

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) *http.Server {
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)
	emailQueue := internalRedis.NewJobQueue(redisClient, internalRedis.EmailQueueKey)

	transactor := postgres.NewTransactor(db)
	userRepo := postgres.NewUserRepository(db)
	listingRepo := postgres.NewListingRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		SecretKey: cfg.Gateway.SecretKey,
		Timeout:   cfg.Gateway.Timeout,
	}, logger)

	notificationService := service.NewNotificationService(emailQueue, logger)
	userService := service.NewUserService(userRepo)
	listingService := service.NewListingService(listingRepo, userRepo, cacheStore, logger)
	bookingService := service.NewBookingService(
		transactor, bookingRepo, listingRepo, userRepo,
		notificationService, cfg.Payment.Currency, logger,
	)
	paymentService := service.NewPaymentService(
		transactor, paymentRepo, bookingRepo, listingRepo, userRepo,
		gatewayClient, lockStore, notificationService,
		service.PaymentOptions{
			Currency:      cfg.Payment.Currency,
			LockTTL:       cfg.Payment.LockTTL,
			PublicBaseURL: cfg.Server.PublicBaseURL,
		},
		logger,
	)

	router := app.NewRouter(app.RouterDeps{
		ListingHandler: handler.NewListingHandler(listingService),
		UserHandler:    handler.NewUserHandler(userService),
		BookingHandler: handler.NewBookingHandler(bookingService, paymentService),
		PaymentHandler: handler.NewPaymentHandler(paymentService),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         logger,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
