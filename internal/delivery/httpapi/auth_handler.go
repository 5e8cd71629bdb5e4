package httpapi

import (
	"net/http"

	"BubblyService/internal/models"
	"BubblyService/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) startSession(c *gin.Context, user *models.User) bool {
	sessionID, err := h.services.Auth.StartSession(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create session")
		return false
	}
	if err := h.cookie.Set(c, sessionID); err != nil {
		respondError(c, h.logger, err, "Failed to create session")
		return false
	}
	return true
}

// Register регистрирует пользователя и открывает сессию
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.services.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}

	if !h.startSession(c, user) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
		"message": "Registration successful",
	})
}

// Login проверяет учетные данные и открывает сессию
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.services.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}

	if !h.startSession(c, user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"message": "Login successful",
	})
}

// Logout завершает сессию
func (h *Handler) Logout(c *gin.Context) {
	if err := h.services.Auth.Logout(c.Request.Context(), currentSessionID(c)); err != nil {
		respondError(c, h.logger, err, "Failed to logout")
		return
	}

	h.cookie.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
}

// Me возвращает пользователя текущей сессии. Если пользователь удален, сессия закрывается.
func (h *Handler) Me(c *gin.Context) {
	userID, _ := currentUserID(c)

	user, err := h.services.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			if logoutErr := h.services.Auth.Logout(c.Request.Context(), currentSessionID(c)); logoutErr != nil {
				h.logger.Warn("Failed to destroy session of missing user", zap.Error(logoutErr))
			}
			h.cookie.Clear(c)
		}
		respondError(c, h.logger, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SaveInterests сохраняет интересы текущего пользователя
func (h *Handler) SaveInterests(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req models.SaveInterestsRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.services.Auth.SaveInterests(c.Request.Context(), userID, &req); err != nil {
		respondError(c, h.logger, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Interests saved successfully"})
}

// UserInterests возвращает интересы текущего пользователя
func (h *Handler) UserInterests(c *gin.Context) {
	userID, _ := currentUserID(c)

	interests, err := h.services.Auth.UserInterests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch interests")
		return
	}

	c.JSON(http.StatusOK, gin.H{"interests": interests})
}
