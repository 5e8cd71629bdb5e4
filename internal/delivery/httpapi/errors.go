package httpapi

import (
	"net/http"
	"strconv"

	"BubblyService/pkg/apperrors"
	"BubblyService/pkg/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError отображает ошибку сервиса в HTTP-статус и тело {"error": ...}.
// Для внутренних ошибок клиент получает fallback, подробности уходят в лог.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	kind := apperrors.KindOf(err)
	status := kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		server.WithRequestID(c.Request.Context(), logger).Error(fallback,
			zap.Error(err),
			zap.String("path", c.FullPath()))
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{"error": apperrors.PublicMessage(err, fallback)})
}

// parseID читает числовой параметр пути; при ошибке отвечает 400
func parseID(c *gin.Context, param, message string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
