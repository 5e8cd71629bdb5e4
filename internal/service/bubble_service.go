package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"
	"BubblyService/pkg/apperrors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BubbleServiceInterface определяет интерфейс жизненного цикла баблов
type BubbleServiceInterface interface {
	CreateBubble(ctx context.Context, ownerID uint, req *models.CreateBubbleRequest) (*models.Bubble, error)
	JoinBubble(ctx context.Context, userID, bubbleID uint) error
	LeaveBubble(ctx context.Context, userID, bubbleID uint) error
	CloseBubble(ctx context.Context, requesterID, bubbleID uint) (*models.Bubble, error)
	IsMember(ctx context.Context, userID, bubbleID uint) (bool, error)
	ListBubbles(ctx context.Context, filter models.BubbleFilter) ([]models.BubbleSummary, error)
	MyBubbles(ctx context.Context, userID uint) ([]models.BubbleSummary, error)
	GetBubble(ctx context.Context, id uint) (*models.BubbleDetails, error)
}

// BubbleService управляет созданием, вступлением, выходом и закрытием баблов
type BubbleService struct {
	bubbles repository.BubbleRepository
	logger  *zap.Logger
}

// NewBubbleService создает новый экземпляр BubbleService
func NewBubbleService(bubbles repository.BubbleRepository, logger *zap.Logger) *BubbleService {
	return &BubbleService{
		bubbles: bubbles,
		logger:  logger,
	}
}

var errBubbleNotFound = apperrors.NotFound("Bubble not found")

func bubbleLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errBubbleNotFound
	}
	return err
}

// CreateBubble создает открытый бабл, членство владельца и теги интересов в одной транзакции
func (s *BubbleService) CreateBubble(ctx context.Context, ownerID uint, req *models.CreateBubbleRequest) (*models.Bubble, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Visibility == "" {
		req.Visibility = models.VisibilityPublic
	}

	if err := validateRequest(req, "Title, latitude, and longitude are required"); err != nil {
		return nil, err
	}
	if req.MaxMembers != nil && *req.MaxMembers < 1 {
		return nil, apperrors.Validation("maxMembers must be at least 1")
	}

	bubble := &models.Bubble{
		OwnerID:    ownerID,
		Title:      req.Title,
		Visibility: req.Visibility,
		MaxMembers: req.MaxMembers,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Status:     models.BubbleOpen,
	}

	err := s.bubbles.WithTx(ctx, func(tx repository.BubbleRepository) error {
		if err := tx.Create(ctx, bubble); err != nil {
			return err
		}

		owner := &models.BubbleMember{
			BubbleID: bubble.ID,
			UserID:   ownerID,
			Role:     models.RoleOwner,
			Status:   models.MembershipJoined,
			JoinedAt: time.Now(),
		}
		if err := tx.AddMember(ctx, owner); err != nil {
			return err
		}

		return tx.AddInterests(ctx, bubble.ID, req.InterestIDs)
	})
	if err != nil {
		s.logger.Error("Failed to create bubble", zap.Error(err), zap.Uint("owner_id", ownerID))
		return nil, err
	}

	s.logger.Info("Bubble created", zap.Uint("bubble_id", bubble.ID), zap.Uint("owner_id", ownerID))
	return bubble, nil
}

// JoinBubble добавляет пользователя в открытый бабл с учетом лимита участников.
// Строка бабла блокируется на время транзакции, поэтому параллельные вступления не превышают лимит.
func (s *BubbleService) JoinBubble(ctx context.Context, userID, bubbleID uint) error {
	err := s.bubbles.WithTx(ctx, func(tx repository.BubbleRepository) error {
		bubble, err := tx.GetByIDForUpdate(ctx, bubbleID)
		if err != nil {
			return bubbleLookupError(err)
		}

		if !bubble.IsOpen() {
			return apperrors.State("Bubble is not open for joining")
		}

		member, err := tx.GetMember(ctx, bubbleID, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if member == nil || member.Status != models.MembershipJoined {
			joined, err := tx.CountJoined(ctx, bubbleID)
			if err != nil {
				return err
			}
			if bubble.IsFull(joined) {
				return apperrors.Capacity("Bubble is full")
			}

			if member != nil {
				err = tx.Rejoin(ctx, bubbleID, userID)
			} else {
				err = tx.AddMember(ctx, &models.BubbleMember{
					BubbleID: bubbleID,
					UserID:   userID,
					Role:     models.RoleMember,
					Status:   models.MembershipJoined,
					JoinedAt: time.Now(),
				})
			}
			if err != nil {
				return err
			}
		}

		if err := tx.RecordInteraction(ctx, userID, bubbleID, models.ActionJoin); err != nil {
			return err
		}
		return tx.RecordInteraction(ctx, userID, bubbleID, models.ActionView)
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			s.logger.Error("Failed to join bubble", zap.Error(err),
				zap.Uint("user_id", userID), zap.Uint("bubble_id", bubbleID))
		}
		return err
	}

	s.logger.Info("User joined bubble", zap.Uint("user_id", userID), zap.Uint("bubble_id", bubbleID))
	return nil
}

// LeaveBubble переводит членство в статус left без проверки, что пользователь состоял в бабле
func (s *BubbleService) LeaveBubble(ctx context.Context, userID, bubbleID uint) error {
	if err := s.bubbles.MarkLeft(ctx, bubbleID, userID); err != nil {
		s.logger.Error("Failed to leave bubble", zap.Error(err),
			zap.Uint("user_id", userID), zap.Uint("bubble_id", bubbleID))
		return err
	}

	s.logger.Info("User left bubble", zap.Uint("user_id", userID), zap.Uint("bubble_id", bubbleID))
	return nil
}

// CloseBubble закрывает бабл. Закрыть может только владелец, переоткрытие не предусмотрено.
func (s *BubbleService) CloseBubble(ctx context.Context, requesterID, bubbleID uint) (*models.Bubble, error) {
	bubble, err := s.bubbles.GetByID(ctx, bubbleID)
	if err != nil {
		return nil, bubbleLookupError(err)
	}

	if bubble.OwnerID != requesterID {
		return nil, apperrors.Forbidden("Only the owner can close the bubble")
	}

	if bubble.Status == models.BubbleClosed {
		return bubble, nil
	}

	if err := s.bubbles.UpdateStatus(ctx, bubbleID, models.BubbleClosed); err != nil {
		s.logger.Error("Failed to close bubble", zap.Error(err), zap.Uint("bubble_id", bubbleID))
		return nil, bubbleLookupError(err)
	}
	bubble.Status = models.BubbleClosed

	s.logger.Info("Bubble closed", zap.Uint("bubble_id", bubbleID), zap.Uint("owner_id", requesterID))
	return bubble, nil
}

// IsMember проверяет, состоит ли пользователь в бабле
func (s *BubbleService) IsMember(ctx context.Context, userID, bubbleID uint) (bool, error) {
	return s.bubbles.IsMember(ctx, bubbleID, userID)
}

// ListBubbles возвращает баблы по фильтру
func (s *BubbleService) ListBubbles(ctx context.Context, filter models.BubbleFilter) ([]models.BubbleSummary, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.Validation("Invalid status")
	}

	bubbles, err := s.bubbles.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list bubbles", zap.Error(err))
		return nil, err
	}
	return bubbles, nil
}

// MyBubbles возвращает баблы, в которых состоит пользователь
func (s *BubbleService) MyBubbles(ctx context.Context, userID uint) ([]models.BubbleSummary, error) {
	return s.ListBubbles(ctx, models.BubbleFilter{MemberID: &userID})
}

// GetBubble возвращает бабл с участниками и интересами
func (s *BubbleService) GetBubble(ctx context.Context, id uint) (*models.BubbleDetails, error) {
	summary, err := s.bubbles.GetSummary(ctx, id)
	if err != nil {
		return nil, bubbleLookupError(err)
	}

	members, err := s.bubbles.GetMembers(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get bubble members", zap.Error(err), zap.Uint("bubble_id", id))
		return nil, err
	}

	interests, err := s.bubbles.GetInterests(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get bubble interests", zap.Error(err), zap.Uint("bubble_id", id))
		return nil, err
	}

	return &models.BubbleDetails{
		Bubble:    summary.Bubble,
		OwnerName: summary.OwnerName,
		Members:   members,
		Interests: interests,
	}, nil
}
