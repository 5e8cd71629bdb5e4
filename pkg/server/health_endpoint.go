package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	statusUp       = "up"
	statusDown     = "down"
	statusUnknown  = "unknown"
	statusDegraded = "degraded"
)

// HealthCheckerInterface определяет проверки зависимостей сервиса
type HealthCheckerInterface interface {
	// IsDatabaseHealthy проверяет здоровье PostgreSQL
	IsDatabaseHealthy(ctx context.Context) bool

	// IsRedisHealthy проверяет здоровье Redis (хранилище сессий)
	IsRedisHealthy(ctx context.Context) bool
}

// HealthCheck хранит последние известные статусы зависимостей и отдает их по HTTP
type HealthCheck struct {
	checker       HealthCheckerInterface
	logger        *zap.Logger
	version       string
	statusMutex   sync.RWMutex
	serviceStatus map[string]string
	checkedAt     time.Time
}

// HealthResponse представляет ответ эндпоинта проверки здоровья
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
}

// NewHealthCheck создает новый сервис проверки здоровья
func NewHealthCheck(checker HealthCheckerInterface, logger *zap.Logger, version string) *HealthCheck {
	return &HealthCheck{
		checker: checker,
		logger:  logger,
		version: version,
		serviceStatus: map[string]string{
			"postgres": statusUnknown,
			"redis":    statusUnknown,
		},
	}
}

// Register подключает эндпоинты liveness и readiness к роутеру
func (h *HealthCheck) Register(r gin.IRoutes) {
	r.GET("/health/live", h.livenessHandler)
	r.GET("/health/ready", h.readinessHandler)
	r.GET("/health/details", h.detailsHandler)
}

// Start выполняет первую проверку синхронно и запускает фоновый мониторинг до отмены ctx
func (h *HealthCheck) Start(ctx context.Context, interval time.Duration) {
	h.CheckNow(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.CheckNow(ctx)
			}
		}
	}()
}

// CheckNow проверяет все зависимости и обновляет статусы
func (h *HealthCheck) CheckNow(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	pgStatus := statusUp
	if !h.checker.IsDatabaseHealthy(ctx) {
		pgStatus = statusDown
		h.logger.Warn("PostgreSQL health check failed")
	}

	redisStatus := statusUp
	if !h.checker.IsRedisHealthy(ctx) {
		redisStatus = statusDown
		h.logger.Warn("Redis health check failed")
	}

	h.statusMutex.Lock()
	h.serviceStatus["postgres"] = pgStatus
	h.serviceStatus["redis"] = redisStatus
	h.checkedAt = time.Now()
	h.statusMutex.Unlock()
}

// Snapshot возвращает копию статусов и сводный статус
func (h *HealthCheck) Snapshot() (string, map[string]string) {
	h.statusMutex.RLock()
	defer h.statusMutex.RUnlock()

	services := make(map[string]string, len(h.serviceStatus))
	for k, v := range h.serviceStatus {
		services[k] = v
	}

	// Без PostgreSQL сервис не работает, без Redis не работает только аутентификация
	overall := statusUp
	switch {
	case services["postgres"] != statusUp:
		overall = statusDown
	case services["redis"] != statusUp:
		overall = statusDegraded
	}

	return overall, services
}

// livenessHandler отвечает, что процесс жив, не проверяя зависимости
func (h *HealthCheck) livenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusUp})
}

// readinessHandler принимает трафик, только если доступны PostgreSQL и Redis
func (h *HealthCheck) readinessHandler(c *gin.Context) {
	overall, services := h.Snapshot()

	if overall != statusUp {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   statusDown,
			"services": services,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusUp})
}

// detailsHandler отдает статусы всех зависимостей
func (h *HealthCheck) detailsHandler(c *gin.Context) {
	overall, services := h.Snapshot()

	code := http.StatusOK
	if overall == statusDown {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    overall,
		Services:  services,
		Timestamp: time.Now(),
		Version:   h.version,
	})
}
