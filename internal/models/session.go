package models

import "time"

// Session серверная сессия пользователя, хранится в Redis под ключом session:<id>
type Session struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
