package postgres

import (
	"context"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"

	"gorm.io/gorm"
)

var _ repository.InterestRepository = (*InterestRepository)(nil)

// InterestRepository справочник интересов
type InterestRepository struct {
	db *gorm.DB
}

// NewInterestRepository создает новый экземпляр InterestRepository
func NewInterestRepository(db *gorm.DB) *InterestRepository {
	return &InterestRepository{db: db}
}

// All возвращает все интересы, упорядоченные по категории и названию
func (r *InterestRepository) All(ctx context.Context) (_ []models.Interest, err error) {
	defer observe("interest_all", time.Now(), &err)

	interests := make([]models.Interest, 0)
	if err = r.db.WithContext(ctx).Order("category, name").Find(&interests).Error; err != nil {
		return nil, err
	}
	return interests, nil
}

// Categories возвращает список различных категорий по алфавиту
func (r *InterestRepository) Categories(ctx context.Context) (_ []string, err error) {
	defer observe("interest_categories", time.Now(), &err)

	categories := make([]string, 0)
	err = r.db.WithContext(ctx).
		Model(&models.Interest{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ByCategory возвращает интересы одной категории
func (r *InterestRepository) ByCategory(ctx context.Context, category string) (_ []models.Interest, err error) {
	defer observe("interest_by_category", time.Now(), &err)

	interests := make([]models.Interest, 0)
	err = r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("name").
		Find(&interests).Error
	if err != nil {
		return nil, err
	}
	return interests, nil
}
