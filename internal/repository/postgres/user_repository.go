package postgres

import (
	"context"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository представляет репозиторий для работы с пользователями
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает нового пользователя. Повтор email возвращает gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (err error) {
	defer observe("user_create", time.Now(), &err)
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (_ *models.User, err error) {
	defer observe("user_get_by_id", time.Now(), &err)

	var user models.User
	if err = r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	defer observe("user_get_by_email", time.Now(), &err)

	var user models.User
	if err = r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddInterests добавляет интересы пользователю; уже существующие пары пропускаются
func (r *UserRepository) AddInterests(ctx context.Context, userID uint, interestIDs []uint) (err error) {
	if len(interestIDs) == 0 {
		return nil
	}
	defer observe("user_add_interests", time.Now(), &err)

	rows := make([]models.UserInterest, 0, len(interestIDs))
	for _, id := range interestIDs {
		rows = append(rows, models.UserInterest{UserID: userID, InterestID: id})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// GetInterests возвращает интересы пользователя
func (r *UserRepository) GetInterests(ctx context.Context, userID uint) (_ []models.Interest, err error) {
	defer observe("user_get_interests", time.Now(), &err)

	interests := make([]models.Interest, 0)
	err = r.db.WithContext(ctx).
		Joins("JOIN user_interests ui ON ui.interest_id = interests.id").
		Where("ui.user_id = ?", userID).
		Order("interests.category, interests.name").
		Find(&interests).Error
	if err != nil {
		return nil, err
	}
	return interests, nil
}
