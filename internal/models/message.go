package models

import (
	"time"
)

// Message сообщение в бабле, неизменяемо после создания
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BubbleID  uint      `gorm:"not null;index:idx_messages_bubble_created" json:"bubble_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null;check:chk_messages_content,length(trim(content)) > 0" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_bubble_created" json:"created_at"`
}

// MessageView сообщение с именем отправителя и названием бабла
type MessageView struct {
	Message
	SenderName  string `json:"sender_name"`
	BubbleTitle string `json:"bubble_title,omitempty"`
}

// SendMessageRequest представляет запрос на отправку сообщения
type SendMessageRequest struct {
	Content string `json:"content"`
}

// TableName устанавливает имя таблицы для модели Message
func (Message) TableName() string {
	return "messages"
}
