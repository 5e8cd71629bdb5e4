package service

import (
	"context"
	"errors"
	"strings"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"
	"BubblyService/pkg/apperrors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthServiceInterface определяет интерфейс регистрации, входа и сессий
type AuthServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, error)
	Me(ctx context.Context, userID uint) (*models.User, error)
	SaveInterests(ctx context.Context, userID uint, req *models.SaveInterestsRequest) error
	UserInterests(ctx context.Context, userID uint) ([]models.Interest, error)
	StartSession(ctx context.Context, user *models.User) (string, error)
	Authenticate(ctx context.Context, sessionID string) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthService управляет пользователями и их сессиями
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService создает новый экземпляр AuthService
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

var (
	errInvalidCredentials = apperrors.Auth("Invalid credentials")
	errEmailTaken         = apperrors.Validation("Email already registered")
	errUserNotFound       = apperrors.NotFound("User not found")
)

// Register создает пользователя с bcrypt-хэшем пароля
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Sex = strings.TrimSpace(req.Sex)

	if err := validateRequest(req, "All fields are required"); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("Failed to check email", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Sex:          req.Sex,
		Age:          int(req.Age),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errEmailTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login проверяет email и пароль
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)

	if err := validateRequest(req, "Email and password are required"); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	s.logger.Info("User logged in", zap.Uint("user_id", user.ID))
	return user, nil
}

// Me возвращает пользователя текущей сессии
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SaveInterests добавляет интересы пользователю; уже сохраненные пропускаются
func (s *AuthService) SaveInterests(ctx context.Context, userID uint, req *models.SaveInterestsRequest) error {
	if err := validateRequest(req, "Interest IDs are required"); err != nil {
		return err
	}

	if err := s.users.AddInterests(ctx, userID, req.InterestIDs); err != nil {
		s.logger.Error("Failed to save interests", zap.Error(err), zap.Uint("user_id", userID))
		return err
	}
	return nil
}

// UserInterests возвращает интересы пользователя
func (s *AuthService) UserInterests(ctx context.Context, userID uint) ([]models.Interest, error) {
	return s.users.GetInterests(ctx, userID)
}

// StartSession создает серверную сессию и возвращает ее id
func (s *AuthService) StartSession(ctx context.Context, user *models.User) (string, error) {
	id, err := s.sessions.Create(ctx, &models.Session{UserID: user.ID, Email: user.Email})
	if err != nil {
		s.logger.Error("Failed to create session", zap.Error(err), zap.Uint("user_id", user.ID))
		return "", err
	}
	return id, nil
}

// Authenticate возвращает сессию по id. Отсутствующая или истекшая сессия дает ошибку Auth.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.Auth("Authentication required")
		}
		return nil, err
	}
	return session, nil
}

// Logout удаляет сессию
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Error("Failed to logout", zap.Error(err))
		return err
	}
	return nil
}
