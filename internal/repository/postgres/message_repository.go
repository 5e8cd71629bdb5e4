package postgres

import (
	"context"
	"time"

	"BubblyService/internal/models"
	"BubblyService/internal/repository"

	"gorm.io/gorm"
)

var _ repository.MessageRepository = (*MessageRepository)(nil)

// MessageRepository представляет репозиторий сообщений
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository создает новый экземпляр MessageRepository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create сохраняет сообщение
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) (err error) {
	defer observe("message_create", time.Now(), &err)
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByBubble возвращает сообщения бабла в порядке отправки
func (r *MessageRepository) ListByBubble(ctx context.Context, bubbleID uint) (_ []models.MessageView, err error) {
	defer observe("message_list_by_bubble", time.Now(), &err)

	messages := make([]models.MessageView, 0)
	err = r.db.WithContext(ctx).
		Table("messages m").
		Select("m.*, u.name AS sender_name").
		Joins("JOIN users u ON u.id = m.sender_id").
		Where("m.bubble_id = ?", bubbleID).
		Order("m.created_at ASC, m.id ASC").
		Scan(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// RecentForUser возвращает последние сообщения из баблов, где пользователь состоит
func (r *MessageRepository) RecentForUser(ctx context.Context, userID uint, limit int) (_ []models.MessageView, err error) {
	defer observe("message_recent_for_user", time.Now(), &err)

	messages := make([]models.MessageView, 0)
	err = r.db.WithContext(ctx).
		Table("messages m").
		Select("m.*, u.name AS sender_name, b.title AS bubble_title").
		Joins("JOIN users u ON u.id = m.sender_id").
		Joins("JOIN bubbles b ON b.id = m.bubble_id").
		Where("m.bubble_id IN (SELECT bubble_id FROM bubble_members WHERE user_id = ? AND status = ?)",
			userID, models.MembershipJoined).
		Order("m.created_at DESC, m.id DESC").
		Limit(limit).
		Scan(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
