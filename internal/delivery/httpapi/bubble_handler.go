package httpapi

import (
	"net/http"

	"BubblyService/internal/models"

	"github.com/gin-gonic/gin"
)

const invalidBubbleID = "Invalid bubble id"

// CreateBubble создает бабл от имени текущего пользователя
func (h *Handler) CreateBubble(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req models.CreateBubbleRequest
	if !bindJSON(c, &req) {
		return
	}

	bubble, err := h.services.Bubbles.CreateBubble(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create bubble")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"bubble":  bubble,
		"message": "Bubble created successfully",
	})
}

// ListBubbles возвращает баблы; ?status=open|closed фильтрует по статусу
func (h *Handler) ListBubbles(c *gin.Context) {
	// Неизвестный статус не фильтрует
	var filter models.BubbleFilter
	if s := models.BubbleStatus(c.Query("status")); s.Valid() {
		filter.Status = &s
	}

	h.listBubbles(c, filter)
}

// ListBubblesByStatus возвращает баблы с фиксированным статусом
func (h *Handler) ListBubblesByStatus(status models.BubbleStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.listBubbles(c, models.BubbleFilter{Status: &status})
	}
}

func (h *Handler) listBubbles(c *gin.Context, filter models.BubbleFilter) {
	bubbles, err := h.services.Bubbles.ListBubbles(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch bubbles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bubbles": bubbles})
}

// MyBubbles возвращает баблы, в которых состоит текущий пользователь
func (h *Handler) MyBubbles(c *gin.Context) {
	userID, _ := currentUserID(c)

	bubbles, err := h.services.Bubbles.MyBubbles(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch your bubbles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bubbles": bubbles})
}

// GetBubble возвращает бабл с участниками и интересами
func (h *Handler) GetBubble(c *gin.Context) {
	id, ok := parseID(c, "id", invalidBubbleID)
	if !ok {
		return
	}

	bubble, err := h.services.Bubbles.GetBubble(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch bubble")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bubble": bubble})
}

// JoinBubble добавляет текущего пользователя в бабл
func (h *Handler) JoinBubble(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseID(c, "id", invalidBubbleID)
	if !ok {
		return
	}

	if err := h.services.Bubbles.JoinBubble(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err, "Failed to join bubble")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully joined the bubble"})
}

// LeaveBubble выводит текущего пользователя из бабла
func (h *Handler) LeaveBubble(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseID(c, "id", invalidBubbleID)
	if !ok {
		return
	}

	if err := h.services.Bubbles.LeaveBubble(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err, "Failed to leave bubble")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Successfully left the bubble"})
}

// CloseBubble закрывает бабл, если текущий пользователь его владелец
func (h *Handler) CloseBubble(c *gin.Context) {
	userID, _ := currentUserID(c)
	id, ok := parseID(c, "id", invalidBubbleID)
	if !ok {
		return
	}

	bubble, err := h.services.Bubbles.CloseBubble(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to close bubble")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bubble":  bubble,
		"message": "Bubble closed successfully",
	})
}
