package service

import (
	"context"
	"errors"

	"BubblyService/internal/mlclient"
	"BubblyService/internal/models"
	"BubblyService/internal/repository"
	"BubblyService/pkg/apperrors"
	"BubblyService/pkg/server"

	"go.uber.org/zap"
)

// RecommendationLimit максимальное число рекомендованных баблов
const RecommendationLimit = 15

const (
	sourceML       = "ml"
	sourceFallback = "fallback"
)

// MLClient описывает внешний сервис предсказаний
type MLClient interface {
	Predict(ctx context.Context, userID uint, limit int) ([]uint, error)
	Train(ctx context.Context) error
	Health(ctx context.Context) (interface{}, error)
}

// MLHealth ответ проверки доступности ML-сервиса
type MLHealth struct {
	Status    string      `json:"status"`
	MLService interface{} `json:"mlService"`
}

// RecommendationServiceInterface определяет интерфейс сервиса рекомендаций
type RecommendationServiceInterface interface {
	GetRecommendations(ctx context.Context, userID uint) ([]models.BubbleSummary, error)
	TrainModel(ctx context.Context) error
	Health(ctx context.Context) MLHealth
}

// RecommendationService ранжирует баблы через ML-сервис, при его отказе по пересечению интересов
type RecommendationService struct {
	repo   repository.RecommendationRepository
	ml     MLClient
	logger *zap.Logger
}

// NewRecommendationService создает новый экземпляр RecommendationService
func NewRecommendationService(repo repository.RecommendationRepository, ml MLClient, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		repo:   repo,
		ml:     ml,
		logger: logger,
	}
}

// GetRecommendations возвращает до RecommendationLimit открытых баблов для пользователя.
// Любая ошибка ML-сервиса приводит к ранжированию по интересам и не возвращается клиенту.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID uint) ([]models.BubbleSummary, error) {
	ids, err := s.ml.Predict(ctx, userID, RecommendationLimit)
	if err != nil {
		s.logger.Warn("ML service unavailable, falling back to interest-based ranking",
			zap.Error(err), zap.Uint("user_id", userID))
	}

	if err == nil && len(ids) > 0 {
		bubbles, err := s.inModelOrder(ctx, ids)
		if err != nil {
			s.logger.Error("Failed to load recommended bubbles", zap.Error(err), zap.Uint("user_id", userID))
			return nil, err
		}
		server.RecordRecommendationSource(sourceML)
		return bubbles, nil
	}

	bubbles, err := s.interestBased(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to rank bubbles by interests", zap.Error(err), zap.Uint("user_id", userID))
		return nil, err
	}
	server.RecordRecommendationSource(sourceFallback)
	return bubbles, nil
}

// inModelOrder загружает открытые баблы и расставляет их строго в порядке ids.
// Id, не ставшие открытым баблом, пропускаются; повторный id сохраняет первую позицию.
func (s *RecommendationService) inModelOrder(ctx context.Context, ids []uint) ([]models.BubbleSummary, error) {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	rows, err := s.repo.OpenBubblesByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.BubbleSummary, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	bubbles := make([]models.BubbleSummary, 0, len(rows))
	for _, id := range unique {
		if row, ok := byID[id]; ok {
			bubbles = append(bubbles, row)
		}
	}
	return bubbles, nil
}

func (s *RecommendationService) interestBased(ctx context.Context, userID uint) ([]models.BubbleSummary, error) {
	interestIDs, err := s.repo.UserInterestIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	joinedIDs, err := s.repo.JoinedBubbleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.RankByInterestOverlap(ctx, userID, interestIDs, joinedIDs, RecommendationLimit)
}

// TrainModel запускает обучение модели; любой отказ ML-сервиса возвращается как ServiceUnavailable.
// Сообщение, которое ML-сервис вернул вместе с кодом ошибки, передается клиенту.
func (s *RecommendationService) TrainModel(ctx context.Context) error {
	if err := s.ml.Train(ctx); err != nil {
		var statusErr *mlclient.StatusError
		if errors.As(err, &statusErr) {
			s.logger.Error("Train model error",
				zap.Int("ml_status", statusErr.StatusCode),
				zap.String("ml_message", statusErr.Message),
				zap.Error(err))
			if statusErr.Message != "" {
				return apperrors.ServiceUnavailable("ML service unavailable: "+statusErr.Message, err)
			}
		} else {
			s.logger.Error("Train model error", zap.Error(err))
		}
		return apperrors.ServiceUnavailable("ML service unavailable", err)
	}

	s.logger.Info("Model training completed")
	return nil
}

// Health сообщает состояние ML-сервиса и никогда не завершается ошибкой
func (s *RecommendationService) Health(ctx context.Context) MLHealth {
	body, err := s.ml.Health(ctx)
	if err != nil {
		s.logger.Debug("ML health check failed", zap.Error(err))
		return MLHealth{Status: "degraded", MLService: "unavailable"}
	}
	return MLHealth{Status: "healthy", MLService: body}
}
