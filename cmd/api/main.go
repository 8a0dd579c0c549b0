package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trading-relay/internal/config"
	"trading-relay/internal/db"
	apihttp "trading-relay/internal/http"
	"trading-relay/internal/llm"
	"trading-relay/internal/metrics"
	"trading-relay/internal/repository"
	"trading-relay/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	// Sin ANTHROPIC_API_KEY el proceso no llega a escuchar.
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(registry, cfg.MetricsModels...)
	}

	llmClient := llm.NewAnthropicClient(cfg.LLMBaseURL, cfg.AnthropicAPIKey, cfg.LLMTimeout, logger)

	var limiter service.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, rate limiting disabled", zap.Error(err))
		} else {
			limiter = service.NewRedisFrameRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax)
		}
		cancel()
	}

	var exchanges repository.ExchangeRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.Ping(ctxPing, pool)
		cancel()
		if err != nil {
			logger.Fatal("database unreachable", zap.Error(err))
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		exchanges = repository.NewPgExchangeRepository(pool)
	}

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, 0)
	} else {
		logger.Warn("jwt secret not configured, /ws is unauthenticated")
	}

	relaySvc := service.NewRelayService(logger, llmClient, limiter, exchanges, m)
	healthSvc := service.NewHealthService(logger, llmClient, llmClient.APIKeyConfigured(), m)

	wsHandler := apihttp.NewWSHandler(logger, relaySvc, cfg.CORSAllowedOrigins, m)
	healthHandler := apihttp.NewHealthHandler(healthSvc)
	router := apihttp.NewRouter(logger, cfg.CORSAllowedOrigins, wsHandler, healthHandler, jwtSvc, m)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Bool("rate_limit", limiter != nil),
		zap.Bool("exchange_log", exchanges != nil),
		zap.Bool("metrics", m != nil),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
