package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"empathic-credit/internal/config"
	"empathic-credit/internal/db"
	apihttp "empathic-credit/internal/http"
	"empathic-credit/internal/queue"
	"empathic-credit/internal/repository"
	"empathic-credit/internal/risk"
	"empathic-credit/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

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

	creditRepo := repository.NewPgCreditRepository(pool)
	txnRepo := repository.NewPgTransactionRepository(pool)
	emotionRepo := repository.NewPgEmotionalEventRepository(pool)

	var scorer risk.Scorer
	if cfg.RiskModelURL != "" {
		scorer = risk.NewHTTPClient(
			cfg.RiskModelURL,
			cfg.RiskModelAPIKey,
			time.Duration(cfg.RiskModelTimeoutSeconds)*time.Second,
			logger,
		)
	} else {
		logger.Warn("risk model not configured, using neutral mock scorer")
		scorer = &risk.MockScorer{Score: 0.5}
	}

	var (
		redisClient   *redis.Client
		ingestLimiter apihttp.RateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			ingestLimiter = apihttp.NewRedisRateLimiter(redisClient, time.Minute, 120)
		}
		cancel()
	}
	if redisClient == nil {
		logger.Fatal("redis is required for the acceptance queue")
	}
	acceptanceQueue := queue.NewRedisQueue(redisClient, queue.AcceptanceQueueKey)

	creditSvc := service.NewCreditService(
		logger,
		creditRepo,
		txnRepo,
		emotionRepo,
		scorer,
		acceptanceQueue,
		service.CreditConfig{
			RiskAssessmentTTL:   time.Duration(cfg.RiskAssessmentTTLDays) * 24 * time.Hour,
			OfferTTL:            time.Duration(cfg.CreditOfferTTLDays) * 24 * time.Hour,
			TransactionLookback: time.Duration(cfg.TransactionLookbackDays) * 24 * time.Hour,
			TransactionLimit:    cfg.TransactionLimit,
			EmotionLookback:     time.Duration(cfg.EmotionLookbackDays) * 24 * time.Hour,
			EmotionLimit:        cfg.EmotionLimit,
		},
	)
	emotionSvc := service.NewEmotionService(logger, emotionRepo)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	authHandler := apihttp.NewAuthHandler(logger, jwtSvc, cfg.IngestClientID, cfg.IngestClientSecretHash)
	creditHandler := apihttp.NewCreditHandler(logger, creditSvc)
	emotionHandler := apihttp.NewEmotionHandler(logger, emotionSvc, ingestLimiter)
	healthHandler := apihttp.NewHealthHandler(func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx)
	})
	router := apihttp.NewRouter(logger, apihttp.JWTAuthMiddleware(jwtSvc), authHandler, creditHandler, emotionHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
