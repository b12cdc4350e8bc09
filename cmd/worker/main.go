package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"empathic-credit/internal/config"
	"empathic-credit/internal/db"
	"empathic-credit/internal/notification"
	"empathic-credit/internal/queue"
	"empathic-credit/internal/repository"
	"empathic-credit/internal/worker"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RedisAddr == "" {
		logger.Fatal("redis is required for the acceptance queue")
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(ctxPing).Err(); err != nil {
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	cancel()

	creditRepo := repository.NewPgCreditRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)

	emailChannel := notification.NewDisabledChannel("email channel not configured")
	if cfg.SMTPHost != "" {
		channel, err := notification.NewSMTPChannel(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp channel init failed", zap.Error(err))
		} else {
			emailChannel = channel
		}
	}
	pushChannel := notification.NewDisabledChannel("push channel not configured")
	if cfg.PushWebhookURL != "" {
		channel, err := notification.NewPushChannel(cfg.PushWebhookURL)
		if err != nil {
			logger.Warn("push channel init failed", zap.Error(err))
		} else {
			pushChannel = channel
		}
	}
	notifier := notification.NewMultiSender(emailChannel, pushChannel)

	acceptanceQueue := queue.NewRedisQueue(redisClient, queue.AcceptanceQueueKey)
	acceptanceWorker := worker.NewAcceptanceWorker(logger, creditRepo, userRepo, notifier)

	if err := acceptanceWorker.Run(ctx, acceptanceQueue); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker error", zap.Error(err))
	}
}
