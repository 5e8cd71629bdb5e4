package httpapi

import (
	"BubblyService/internal/service"

	"go.uber.org/zap"
)

// Services набор сервисов, которые обслуживает HTTP API
type Services struct {
	Auth            service.AuthServiceInterface
	Bubbles         service.BubbleServiceInterface
	Messages        service.MessageServiceInterface
	Interests       service.InterestServiceInterface
	Recommendations service.RecommendationServiceInterface
}

// Handler обработчик HTTP-запросов API
type Handler struct {
	services Services
	cookie   *SessionCookie
	logger   *zap.Logger
}

// NewHandler создает новый экземпляр Handler
func NewHandler(services Services, cookie *SessionCookie, logger *zap.Logger) *Handler {
	return &Handler{
		services: services,
		cookie:   cookie,
		logger:   logger,
	}
}
