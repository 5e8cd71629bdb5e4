package redis

import (
	"context"
	"errors"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"
	"BubblyService/pkg/apperrors"
	"BubblyService/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ repository.SessionRepository = (*ResilientSessionRepository)(nil)

// ResilientSessionRepository добавляет таймаут, circuit breaker и метрики к хранилищу сессий.
// Сбои Redis возвращаются как ServiceUnavailable, отсутствие сессии как redis.Nil.
type ResilientSessionRepository struct {
	client         *redis.Client
	repo           *SessionRepository
	logger         *zap.Logger
	healthChecker  *database.HealthChecker
	commandTimeout time.Duration
}

// NewResilientSessionRepository создает новый экземпляр отказоустойчивого хранилища сессий
func NewResilientSessionRepository(client *redis.Client, ttl time.Duration, healthChecker *database.HealthChecker, commandTimeout time.Duration, logger *zap.Logger) *ResilientSessionRepository {
	return &ResilientSessionRepository{
		client:         client,
		repo:           NewSessionRepository(client, ttl),
		logger:         logger,
		healthChecker:  healthChecker,
		commandTimeout: commandTimeout,
	}
}

func (r *ResilientSessionRepository) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	err := r.healthChecker.WithRedisResilience(ctx, operation, func(ctx context.Context) error {
		return database.SafeRedisOperation(ctx, r.client, r.logger, operation, func(ctx context.Context, _ *redis.Client) error {
			return fn(ctx)
		})
	})

	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return apperrors.ServiceUnavailable("Session store unavailable", err)
}

// Create сохраняет сессию
func (r *ResilientSessionRepository) Create(ctx context.Context, session *models.Session) (string, error) {
	var id string
	err := r.run(ctx, "session_create", func(ctx context.Context) error {
		var err error
		id, err = r.repo.Create(ctx, session)
		return err
	})
	return id, err
}

// Get получает сессию
func (r *ResilientSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var session *models.Session
	err := r.run(ctx, "session_get", func(ctx context.Context) error {
		var err error
		session, err = r.repo.Get(ctx, id)
		return err
	})
	return session, err
}

// Delete удаляет сессию
func (r *ResilientSessionRepository) Delete(ctx context.Context, id string) error {
	return r.run(ctx, "session_delete", func(ctx context.Context) error {
		return r.repo.Delete(ctx, id)
	})
}
