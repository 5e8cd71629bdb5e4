package models

import (
	"time"

	"github.com/lib/pq"
)

// Bubble геолоцированный групповой чат
type Bubble struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	OwnerID    uint         `gorm:"not null;index" json:"owner_id"`
	Title      string       `gorm:"not null" json:"title"`
	Visibility Visibility   `gorm:"type:varchar(16);not null;default:public;check:chk_bubbles_visibility,visibility IN ('public','private')" json:"visibility"`
	MaxMembers *int         `gorm:"check:chk_bubbles_max_members,max_members IS NULL OR max_members > 0" json:"max_members"`
	Latitude   float64      `gorm:"not null" json:"latitude"`
	Longitude  float64      `gorm:"not null" json:"longitude"`
	Status     BubbleStatus `gorm:"type:varchar(16);not null;default:open;index;check:chk_bubbles_status,status IN ('open','closed')" json:"status"`
	CreatedAt  time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
}

// IsOpen сообщает, принимает ли бабл участников и сообщения
func (b *Bubble) IsOpen() bool {
	return b.Status == BubbleOpen
}

// IsFull сообщает, достигнут ли лимит участников
func (b *Bubble) IsFull(joined int64) bool {
	return b.MaxMembers != nil && joined >= int64(*b.MaxMembers)
}

// BubbleMember членство пользователя в бабле; одна строка на пару (bubble, user)
type BubbleMember struct {
	ID       uint             `gorm:"primaryKey" json:"-"`
	BubbleID uint             `gorm:"not null;uniqueIndex:idx_bubble_members_pair" json:"bubble_id"`
	UserID   uint             `gorm:"not null;uniqueIndex:idx_bubble_members_pair;index" json:"user_id"`
	Role     MemberRole       `gorm:"type:varchar(16);not null;default:member;check:chk_bubble_members_role,role IN ('owner','member')" json:"role"`
	Status   MembershipStatus `gorm:"type:varchar(16);not null;default:joined;check:chk_bubble_members_status,status IN ('joined','left')" json:"status"`
	JoinedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joined_at"`
}

// BubbleInterest тег интереса на бабле
type BubbleInterest struct {
	BubbleID   uint `gorm:"primaryKey;autoIncrement:false"`
	InterestID uint `gorm:"primaryKey;autoIncrement:false"`
}

// UserBubbleInteraction запись журнала взаимодействий, уникальна по (user, bubble, action)
type UserBubbleInteraction struct {
	ID        uint              `gorm:"primaryKey"`
	UserID    uint              `gorm:"not null;uniqueIndex:idx_interactions_unique"`
	BubbleID  uint              `gorm:"not null;uniqueIndex:idx_interactions_unique"`
	Action    InteractionAction `gorm:"type:varchar(16);not null;uniqueIndex:idx_interactions_unique;check:chk_interactions_action,action IN ('view','join')"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

// BubbleSummary строка списка баблов с агрегатами
type BubbleSummary struct {
	Bubble
	OwnerName   string         `json:"owner_name"`
	MemberCount int64          `json:"member_count"`
	Interests   pq.StringArray `gorm:"type:text[]" json:"interests"`
}

// MemberInfo участник бабла в ответе детальной информации
type MemberInfo struct {
	ID       uint       `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Sex      string     `json:"sex"`
	Age      int        `json:"age"`
	Role     MemberRole `json:"role"`
	JoinedAt time.Time  `json:"joined_at"`
}

// BubbleDetails бабл вместе с участниками и интересами
type BubbleDetails struct {
	Bubble
	OwnerName string       `json:"owner_name"`
	Members   []MemberInfo `json:"members"`
	Interests []Interest   `json:"interests"`
}

// BubbleFilter фильтр списка баблов; пустой фильтр возвращает все баблы
type BubbleFilter struct {
	Status   *BubbleStatus
	MemberID *uint
}

// CreateBubbleRequest представляет запрос на создание бабла
type CreateBubbleRequest struct {
	Title       string     `json:"title" validate:"required"`
	Visibility  Visibility `json:"visibility" validate:"omitempty,oneof=public private"`
	MaxMembers  *int       `json:"maxMembers"`
	Latitude    *float64   `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   *float64   `json:"longitude" validate:"required,min=-180,max=180"`
	InterestIDs []uint     `json:"interestIds"`
}

// TableName устанавливает имя таблицы для модели Bubble
func (Bubble) TableName() string {
	return "bubbles"
}

// TableName устанавливает имя таблицы для модели BubbleMember
func (BubbleMember) TableName() string {
	return "bubble_members"
}

// TableName устанавливает имя таблицы для модели BubbleInterest
func (BubbleInterest) TableName() string {
	return "bubble_interests"
}

// TableName устанавливает имя таблицы для модели UserBubbleInteraction
func (UserBubbleInteraction) TableName() string {
	return "user_bubble_interactions"
}
