package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recommendations возвращает рекомендованные баблы для текущего пользователя
func (h *Handler) Recommendations(c *gin.Context) {
	userID, _ := currentUserID(c)

	bubbles, err := h.services.Recommendations.GetRecommendations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bubbles": bubbles})
}

// TrainModel запускает обучение модели рекомендаций
func (h *Handler) TrainModel(c *gin.Context) {
	if err := h.services.Recommendations.TrainModel(c.Request.Context()); err != nil {
		respondError(c, h.logger, err, "ML service unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Model training completed"})
}

// MLHealth отдает состояние ML-сервиса, всегда со статусом 200
func (h *Handler) MLHealth(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Recommendations.Health(c.Request.Context()))
}
