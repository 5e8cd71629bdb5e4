package service

import (
	"context"
	"errors"
	"strings"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"
	"BubblyService/pkg/apperrors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecentMessagesLimit число сообщений в ленте последних сообщений
const RecentMessagesLimit = 20

var errNotMember = apperrors.Forbidden("You are not a member of this bubble")

// MessageServiceInterface определяет интерфейс сервиса сообщений
type MessageServiceInterface interface {
	Send(ctx context.Context, userID, bubbleID uint, content string) (*models.Message, error)
	List(ctx context.Context, userID, bubbleID uint) ([]models.MessageView, error)
	Recent(ctx context.Context, userID uint) ([]models.MessageView, error)
}

// MessageService отправка и чтение сообщений участниками баблов
type MessageService struct {
	messages repository.MessageRepository
	bubbles  repository.BubbleRepository
	logger   *zap.Logger
}

// NewMessageService создает новый экземпляр MessageService
func NewMessageService(messages repository.MessageRepository, bubbles repository.BubbleRepository, logger *zap.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		bubbles:  bubbles,
		logger:   logger,
	}
}

// Send сохраняет сообщение. Писать могут только участники, и только пока бабл открыт.
func (s *MessageService) Send(ctx context.Context, userID, bubbleID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Message content is required")
	}

	member, err := s.bubbles.IsMember(ctx, bubbleID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errNotMember
	}

	bubble, err := s.bubbles.GetByID(ctx, bubbleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBubbleNotFound
		}
		return nil, err
	}
	if !bubble.IsOpen() {
		return nil, apperrors.State("Bubble is closed")
	}

	message := &models.Message{
		BubbleID: bubbleID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		s.logger.Error("Failed to send message", zap.Error(err),
			zap.Uint("user_id", userID), zap.Uint("bubble_id", bubbleID))
		return nil, err
	}

	return message, nil
}

// List возвращает сообщения бабла в порядке отправки
func (s *MessageService) List(ctx context.Context, userID, bubbleID uint) ([]models.MessageView, error) {
	member, err := s.bubbles.IsMember(ctx, bubbleID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errNotMember
	}

	return s.messages.ListByBubble(ctx, bubbleID)
}

// Recent возвращает последние сообщения из баблов пользователя, новые первыми
func (s *MessageService) Recent(ctx context.Context, userID uint) ([]models.MessageView, error) {
	return s.messages.RecentForUser(ctx, userID, RecentMessagesLimit)
}
