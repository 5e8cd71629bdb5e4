package httpapi

import (
	"net/http"

	"BubblyService/internal/models"

	"github.com/gin-gonic/gin"
)

// SendMessage отправляет сообщение в бабл
func (h *Handler) SendMessage(c *gin.Context) {
	userID, _ := currentUserID(c)
	bubbleID, ok := parseID(c, "bubbleId", invalidBubbleID)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.services.Messages.Send(c.Request.Context(), userID, bubbleID, req.Content)
	if err != nil {
		respondError(c, h.logger, err, "Failed to send message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
		"message": "Message sent successfully",
	})
}

// BubbleMessages возвращает сообщения бабла
func (h *Handler) BubbleMessages(c *gin.Context) {
	userID, _ := currentUserID(c)
	bubbleID, ok := parseID(c, "bubbleId", invalidBubbleID)
	if !ok {
		return
	}

	messages, err := h.services.Messages.List(c.Request.Context(), userID, bubbleID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// RecentMessages возвращает последние сообщения из баблов пользователя
func (h *Handler) RecentMessages(c *gin.Context) {
	userID, _ := currentUserID(c)

	messages, err := h.services.Messages.Recent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch recent messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
