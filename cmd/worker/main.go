package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"travel/internal/app"
	"travel/internal/config"
	"travel/internal/mail"
	internalRedis "travel/internal/redis"
	"travel/internal/worker"
)

func main() {
	cfg := config.Load()

	logger := app.NewLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	nrApp := app.NewNewRelicApp(cfg.NewRelic, logger)

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := app.NewRedisClient(connectCtx, cfg.Redis, nrApp)
	cancel()
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.NewEmailWorker(
		internalRedis.NewJobQueue(redisClient, internalRedis.EmailQueueKey),
		mail.NewMailer(cfg.Mail),
		cfg.Worker.MaxAttempts,
		cfg.Worker.PollTimeout,
		logger,
	)

	if err := w.Run(ctx); err != nil {
		logger.Error("email worker stopped with error", zap.Error(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
}
