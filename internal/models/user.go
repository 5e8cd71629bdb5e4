package models

import (
	"time"
)

// User представляет зарегистрированного пользователя
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	Sex          string    `gorm:"not null" json:"sex"`
	Age          int       `gorm:"not null" json:"age"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserInterest связь пользователя с интересом
type UserInterest struct {
	UserID     uint `gorm:"primaryKey;autoIncrement:false"`
	InterestID uint `gorm:"primaryKey;autoIncrement:false"`
}

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
	Sex      string      `json:"sex" validate:"required"`
	Age      FlexibleInt `json:"age" validate:"required,min=1,max=150"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SaveInterestsRequest представляет запрос на сохранение интересов пользователя
type SaveInterestsRequest struct {
	InterestIDs []uint `json:"interestIds" validate:"required"`
}

// TableName устанавливает имя таблицы для модели User
func (User) TableName() string {
	return "users"
}

// TableName устанавливает имя таблицы для модели UserInterest
func (UserInterest) TableName() string {
	return "user_interests"
}
