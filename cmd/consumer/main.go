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
	"empathic-credit/internal/queue"
	"empathic-credit/internal/repository"
	"empathic-credit/internal/service"
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
		logger.Fatal("redis is required for the ingest queue")
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

	emotionRepo := repository.NewPgEmotionalEventRepository(pool)
	emotionSvc := service.NewEmotionService(logger, emotionRepo)
	consumer := worker.NewIngestConsumer(logger, redisClient, queue.IngestQueueKey, emotionSvc)

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("consumer error", zap.Error(err))
	}
}
