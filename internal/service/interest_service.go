package service

import (
	"context"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"
)

// InterestServiceInterface определяет интерфейс справочника интересов
type InterestServiceInterface interface {
	All(ctx context.Context) ([]models.Interest, error)
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]models.Interest, error)
}

// InterestService отдает справочник интересов
type InterestService struct {
	interests repository.InterestRepository
}

// NewInterestService создает новый экземпляр InterestService
func NewInterestService(interests repository.InterestRepository) *InterestService {
	return &InterestService{interests: interests}
}

func (s *InterestService) All(ctx context.Context) ([]models.Interest, error) {
	return s.interests.All(ctx)
}

func (s *InterestService) Categories(ctx context.Context) ([]string, error) {
	return s.interests.Categories(ctx)
}

func (s *InterestService) ByCategory(ctx context.Context, category string) ([]models.Interest, error) {
	return s.interests.ByCategory(ctx, category)
}
