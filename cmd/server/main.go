package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"BubblyService/config"
	"BubblyService/internal/database/seed"
	"BubblyService/internal/delivery/httpapi"
	"BubblyService/internal/mlclient"
	"BubblyService/internal/repository/postgres"
	"BubblyService/internal/repository/redis"
	"BubblyService/internal/service"
	"BubblyService/pkg/database"
	"BubblyService/pkg/logger"
	"BubblyService/pkg/resilience"
	"BubblyService/pkg/server"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Версия сервиса
const (
	ServiceVersion = "1.0.0"
)

const (
	healthCheckInterval = 15 * time.Second
	limiterCleanupEvery = 10 * time.Minute
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger().Fatal("Failed to load configuration", zap.Error(err))
	}

	// Инициализация логгера
	log := logger.NewLoggerWithLevel(os.Getenv("LOG_LEVEL"), cfg.App.Env)
	defer func() { _ = log.Sync() }()
	log.Info("Starting Bubbly service", zap.String("version", ServiceVersion), zap.String("env", cfg.App.Env))

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	resilienceCfg := config.DefaultResilienceConfig()
	startupRetry := resilience.RetryOptions{
		MaxRetries:     resilienceCfg.Startup.MaxRetries,
		InitialBackoff: resilienceCfg.Startup.InitialBackoff,
		MaxBackoff:     resilienceCfg.Startup.MaxBackoff,
		BackoffFactor:  resilienceCfg.Startup.BackoffFactor,
		Jitter:         resilienceCfg.Startup.Jitter,
	}

	// Создаем механизм graceful shutdown
	gracefulShutdown := server.NewGracefulShutdown(log, 30*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Подключение к PostgreSQL
	var db *gorm.DB
	err = resilience.WithRetry(ctx, log, "postgres_connect", startupRetry, func(ctx context.Context) error {
		var err error
		db, err = database.NewPostgresDB(cfg.Postgres)
		return err
	})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	log.Info("Connected to PostgreSQL")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get SQL DB instance", zap.Error(err))
	}
	gracefulShutdown.AddShutdownFunc("postgres", func(ctx context.Context) error {
		return sqlDB.Close()
	})

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	if err := seed.NewDevEnvironmentSeeder(db, cfg.App.Env, log).SeedAll(ctx); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	// Подключение к Redis
	var redisClient *goredis.Client
	err = resilience.WithRetry(ctx, log, "redis_connect", startupRetry, func(ctx context.Context) error {
		var err error
		redisClient, err = database.NewRedisClient(cfg.Redis)
		return err
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Info("Connected to Redis")
	gracefulShutdown.AddShutdownFunc("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	// Сервер метрик Prometheus
	metricsServer := server.MetricsServer(strconv.Itoa(cfg.Metrics.Port), log)
	gracefulShutdown.AddHTTPServer("metrics server", metricsServer)

	// Проверка здоровья зависимостей
	healthChecker := database.NewDatabaseHealthChecker(db, redisClient, log)
	healthCheck := server.NewHealthCheck(healthChecker, log, ServiceVersion)
	healthCheck.Start(ctx, healthCheckInterval)

	// Circuit breaker для /predict: после серии отказов рекомендации сразу строятся по интересам
	mlBreaker := resilience.NewCircuitBreaker("ml_predict",
		resilienceCfg.MLBreaker.FailureThreshold, resilienceCfg.MLBreaker.ResetTimeout, log)
	mlBreaker.OnStateChange(func(name string, state resilience.CircuitState) {
		server.RecordCircuitBreakerStateChange(name, int(state))
	})
	mlClient := mlclient.NewClient(cfg.ML, mlBreaker, log)

	// Репозитории
	userRepo := postgres.NewUserRepository(db)
	bubbleRepo := postgres.NewBubbleRepository(db)
	sessionRepo := redis.NewResilientSessionRepository(redisClient, cfg.Session.TTL, healthChecker,
		resilienceCfg.Redis.CommandTimeout, log)

	// Сервисы
	handler := httpapi.NewHandler(httpapi.Services{
		Auth:            service.NewAuthService(userRepo, sessionRepo, log),
		Bubbles:         service.NewBubbleService(bubbleRepo, log),
		Messages:        service.NewMessageService(postgres.NewMessageRepository(db), bubbleRepo, log),
		Interests:       service.NewInterestService(postgres.NewInterestRepository(db)),
		Recommendations: service.NewRecommendationService(postgres.NewRecommendationRepository(db), mlClient, log),
	}, httpapi.NewSessionCookie(cfg.Session), log)

	authLimiter := httpapi.NewRateLimiter(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
	go func() {
		ticker := time.NewTicker(limiterCleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				authLimiter.Cleanup()
			}
		}
	}()

	// Фоновые задачи останавливаются после HTTP сервера, но до закрытия хранилищ
	gracefulShutdown.AddShutdownFunc("background tasks", func(ctx context.Context) error {
		cancel()
		return nil
	})

	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		Health:      healthCheck,
		AuthLimiter: authLimiter,
		Logger:      log,
	})

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:           httpapi.WithCORS(router, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	gracefulShutdown.AddHTTPServer("http server", httpServer)

	go func() {
		log.Info("Starting HTTP server", zap.Int("port", cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	hostname, _ := os.Hostname()
	log.Info("Service started",
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("metrics_port", cfg.Metrics.Port),
		zap.String("ml_url", cfg.ML.URL),
		zap.String("version", ServiceVersion),
		zap.Int("pid", os.Getpid()),
		zap.String("hostname", hostname))

	// Ожидаем сигнала остановки
	gracefulShutdown.WaitWithContext(context.Background())
	log.Info("Service stopped")
}
