package seed

import (
	"context"
	"errors"
	"fmt"

	"BubblyService/internal/models"
	"BubblyService/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DevUserEmail почта тестового пользователя среды разработки
	DevUserEmail = "dev@bubbly.local"
	// DevUserPassword пароль тестового пользователя среды разработки
	DevUserPassword = "bubbly-dev"

	devUserInterests = 3
)

// Interests справочник интересов, который создается при каждом запуске
var Interests = []models.Interest{
	{Name: "Football", Category: "Sports"},
	{Name: "Basketball", Category: "Sports"},
	{Name: "Running", Category: "Sports"},
	{Name: "Yoga", Category: "Sports"},
	{Name: "Rock", Category: "Music"},
	{Name: "Jazz", Category: "Music"},
	{Name: "Electronic", Category: "Music"},
	{Name: "Board Games", Category: "Games"},
	{Name: "Chess", Category: "Games"},
	{Name: "Video Games", Category: "Games"},
	{Name: "Programming", Category: "Technology"},
	{Name: "Startups", Category: "Technology"},
	{Name: "AI", Category: "Technology"},
	{Name: "Painting", Category: "Arts"},
	{Name: "Photography", Category: "Arts"},
	{Name: "Cinema", Category: "Arts"},
	{Name: "Hiking", Category: "Outdoors"},
	{Name: "Cycling", Category: "Outdoors"},
	{Name: "Cooking", Category: "Food"},
	{Name: "Coffee", Category: "Food"},
	{Name: "Languages", Category: "Education"},
	{Name: "Books", Category: "Education"},
}

// DevEnvironmentSeeder заполняет справочники и тестовые данные среды разработки
type DevEnvironmentSeeder struct {
	db     *gorm.DB
	env    string
	logger *zap.Logger
}

// NewDevEnvironmentSeeder создает новый объект для заполнения данных
func NewDevEnvironmentSeeder(db *gorm.DB, env string, logger *zap.Logger) *DevEnvironmentSeeder {
	return &DevEnvironmentSeeder{
		db:     db,
		env:    env,
		logger: logger,
	}
}

// SeedInterests создает отсутствующие интересы справочника; существующие не меняются
func (s *DevEnvironmentSeeder) SeedInterests(ctx context.Context) error {
	rows := make([]models.Interest, len(Interests))
	copy(rows, Interests)

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	if result.Error != nil {
		return fmt.Errorf("failed to seed interests: %w", result.Error)
	}

	s.logger.Info("Interests seeded", zap.Int64("inserted", result.RowsAffected))
	return nil
}

// SeedTestUser создает тестового пользователя, если мы находимся в режиме разработки
func (s *DevEnvironmentSeeder) SeedTestUser(ctx context.Context) error {
	if s.env != "development" {
		s.logger.Debug("Not in development mode, skipping test user")
		return nil
	}

	existing, err := postgres.NewUserRepository(s.db).GetByEmail(ctx, DevUserEmail)
	if err == nil {
		s.logger.Info("Test user already exists", zap.Uint("user_id", existing.ID))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up test user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DevUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash test user password: %w", err)
	}

	user := &models.User{
		Name:         "Dev User",
		Email:        DevUserEmail,
		PasswordHash: string(hash),
		Sex:          "other",
		Age:          30,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := postgres.NewUserRepository(tx)
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create test user: %w", err)
		}

		// Несколько интересов, чтобы рекомендации по пересечению сразу давали результат
		var interestIDs []uint
		if err := tx.Model(&models.Interest{}).Order("id").Limit(devUserInterests).Pluck("id", &interestIDs).Error; err != nil {
			return fmt.Errorf("failed to load interests: %w", err)
		}
		return users.AddInterests(ctx, user.ID, interestIDs)
	})
	if err != nil {
		s.logger.Error("Failed to seed test user", zap.Error(err))
		return err
	}

	s.logger.Info("Test user created", zap.Uint("user_id", user.ID), zap.String("email", DevUserEmail))
	return nil
}

// SeedAll заполняет справочник интересов и, в среде разработки, тестового пользователя
func (s *DevEnvironmentSeeder) SeedAll(ctx context.Context) error {
	if err := s.SeedInterests(ctx); err != nil {
		return err
	}
	return s.SeedTestUser(ctx)
}
