package database

import (
	"context"
	"errors"
	"time"

	"BubblyService/pkg/apperrors"
	"BubblyService/pkg/resilience"
	"BubblyService/pkg/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthChecker предоставляет функции для проверки состояния PostgreSQL и Redis
type HealthChecker struct {
	db           *gorm.DB
	redisClient  *redis.Client
	logger       *zap.Logger
	pgCircuit    *resilience.CircuitBreaker
	redisCircuit *resilience.CircuitBreaker
}

// NewDatabaseHealthChecker создает новый экземпляр проверки состояния баз данных
func NewDatabaseHealthChecker(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *HealthChecker {
	failureThreshold, resetTimeout := resilience.DefaultCircuitBreakerOptions()

	pgCircuit := resilience.NewCircuitBreaker("postgres", failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...)
	redisCircuit := resilience.NewCircuitBreaker("redis", failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...)
	pgCircuit.OnStateChange(recordBreakerState)
	redisCircuit.OnStateChange(recordBreakerState)

	return &HealthChecker{
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		pgCircuit:    pgCircuit,
		redisCircuit: redisCircuit,
	}
}

func recordBreakerState(name string, state resilience.CircuitState) {
	server.RecordCircuitBreakerStateChange(name, int(state))
}

// IsDatabaseHealthy проверяет здоровье PostgreSQL
func (c *HealthChecker) IsDatabaseHealthy(ctx context.Context) bool {
	var result int
	err := c.pgCircuit.Execute(ctx, "postgres_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}

		return sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	})

	return err == nil && result == 1
}

// IsRedisHealthy проверяет здоровье Redis
func (c *HealthChecker) IsRedisHealthy(ctx context.Context) bool {
	err := c.redisCircuit.Execute(ctx, "redis_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
		defer cancel()

		return c.redisClient.Ping(ctx).Err()
	})

	return err == nil
}

// WithRedisResilience выполняет операцию в Redis через circuit breaker.
// redis.Nil не считается отказом и возвращается как есть.
func (c *HealthChecker) WithRedisResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := c.redisCircuit.Execute(ctx, operation, fn)

	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Ключ не найден в Redis, это не ошибка для circuit breaker",
			zap.String("operation", operation))
	}

	return err
}

// SafeRedisOperation выполняет операцию в Redis с таймаутом по умолчанию и логированием ошибок
func SafeRedisOperation(ctx context.Context, client *redis.Client, logger *zap.Logger, operation string, fn func(ctx context.Context, client *redis.Client) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx, client)

	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error("Redis operation failed",
			zap.String("operation", operation),
			zap.Error(err))

		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Redis operation timed out", zap.String("operation", operation))
		} else if errors.Is(err, redis.ErrClosed) {
			logger.Error("Redis connection closed", zap.String("operation", operation))
		}
		server.RecordCacheOperation(operation, time.Since(start), err)
		return err
	}

	server.RecordCacheOperation(operation, time.Since(start), nil)
	return err
}
