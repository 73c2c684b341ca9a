package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fsocietystudios/daily-challenge/internal/blob"
	"github.com/fsocietystudios/daily-challenge/internal/handler"
	"github.com/fsocietystudios/daily-challenge/internal/models"
	"github.com/fsocietystudios/daily-challenge/internal/repository"
	"github.com/fsocietystudios/daily-challenge/internal/service"
	"github.com/fsocietystudios/daily-challenge/pkg/logger"
	"github.com/fsocietystudios/daily-challenge/pkg/metrics"
)

const serviceName = "challenge_service"

func main() {
	// Load environment variables from config.env, falling back to .env
	configPaths := []string{"config.env", "./config.env", "../config.env"}
	var configLoaded bool
	for _, configPath := range configPaths {
		if err := godotenv.Load(configPath); err == nil {
			configLoaded = true
			break
		}
	}
	if !configLoaded {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: config.env and .env files not found, using environment variables only")
		}
	}

	log := logger.NewLogger(serviceName)
	m := metrics.NewMetrics(serviceName)

	// Key-value persistence: Redis in production, in-memory when no
	// Redis is configured (local development only)
	var kv repository.KVStore
	redisURL := getEnv("REDIS_URL", "")
	if redisURL == "" {
		redisHost := getEnv("REDIS_HOST", "")
		if redisHost != "" {
			redisPassword := getEnv("REDIS_PASSWORD", "")
			redisPort := getEnv("REDIS_PORT", "6379")
			redisDB := getEnv("REDIS_DB", "0")
			if redisPassword != "" {
				redisURL = fmt.Sprintf("redis://:%s@%s:%s/%s", redisPassword, redisHost, redisPort, redisDB)
			} else {
				redisURL = fmt.Sprintf("redis://%s:%s/%s", redisHost, redisPort, redisDB)
			}
		}
	}
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			cancel()
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		cancel()
		defer client.Close()

		kv = repository.NewRedisKV(client)
		log.Info("connected to Redis")
	} else {
		kv = repository.NewMemoryKV()
		log.Warn("no Redis configured, using in-memory store (data is not durable)")
	}

	// Blob store: FTP in production, in-memory mock when unconfigured
	var blobClient blob.Client
	if ftpHost := getEnv("FTP_HOST", ""); ftpHost != "" {
		blobClient = blob.NewFTPClient(
			ftpHost,
			getEnv("FTP_PORT", "21"),
			getEnv("FTP_USER", ""),
			getEnv("FTP_PASSWORD", ""),
			getEnv("FTP_BASE_URL", ""),
			getEnv("FTP_BASE_PATH", "challenges"),
		)
	} else {
		blobClient = blob.NewMockClient()
		log.Warn("no FTP configured, using in-memory blob store")
	}
	defer blobClient.Close()

	// Repositories
	challengeRepo := repository.NewChallengeRepository(kv)
	registrationRepo := repository.NewRegistrationRepository(kv)
	rateLimitRepo := repository.NewRateLimitRepository(kv)

	// Services
	clock := service.SystemClock()
	registrationService := service.NewRegistrationService(registrationRepo, models.DefaultCatalog(), clock, log, m)
	challengeService := service.NewChallengeService(challengeRepo, registrationRepo, rateLimitRepo, blobClient, clock, log, m)
	guessService := service.NewGuessService(challengeRepo, clock, m)
	leaderboardService := service.NewLeaderboardService(registrationRepo, challengeRepo)
	rateLimitService := service.NewRateLimitService(rateLimitRepo, clock, 0, 0)

	adminToken := getEnv("ADMIN_TOKEN", "")
	if adminToken == "" {
		log.Warn("ADMIN_TOKEN not set, admin routes are disabled")
	}

	// HTTP server
	mux := http.NewServeMux()
	httpHandler := handler.NewHTTPHandler(
		challengeService,
		registrationService,
		guessService,
		leaderboardService,
		rateLimitService,
		adminToken,
		log,
	)
	httpHandler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
