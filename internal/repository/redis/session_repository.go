package redis

import (
	"context"
	"fmt"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

var _ repository.SessionRepository = (*SessionRepository)(nil)

// SessionRepository хранит серверные сессии в Redis с фиксированным TTL
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository создает новый экземпляр SessionRepository
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, id)
}

// Create сохраняет сессию под новым случайным id и возвращает этот id
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (string, error) {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	if err := r.client.Set(ctx, sessionKey(id), data, r.ttl).Err(); err != nil {
		return "", err
	}

	return id, nil
}

// Get получает сессию по id. Отсутствующая или истекшая сессия возвращает redis.Nil.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// Delete удаляет сессию; удаление несуществующей сессии не является ошибкой
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
