package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// httpRequestDuration измеряет длительность HTTP запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// httpRequestsTotal подсчитывает общее количество HTTP запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	dbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	dbOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	// sessionOperationDuration измеряет длительность операций с хранилищем сессий
	sessionOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "session_store_operation_duration_seconds",
			Help:    "Duration of session store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	sessionOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_operations_total",
			Help: "Total number of session store operations",
		},
		[]string{"operation", "status"},
	)

	// mlRequestDuration измеряет длительность вызовов ML сервиса
	mlRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ml_request_duration_seconds",
			Help:    "Duration of ML service calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint", "status"},
	)

	// recommendationsTotal подсчитывает выдачи рекомендаций по источнику (ml, fallback)
	recommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation responses by source",
		},
		[]string{"source"},
	)

	// circuitBreakerState отслеживает состояние circuit breaker
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "State of circuit breaker (0: closed, 1: half-open, 2: open)",
		},
		[]string{"name"},
	)
)

// MetricsServer запускает отдельный HTTP сервер для Prometheus
func MetricsServer(port string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting metrics server", zap.String("port", port))
		// Недоступность метрик не останавливает основной сервис
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return srv
}

// MetricsMiddleware собирает метрики HTTP запросов.
// В качестве route используется шаблон маршрута gin, чтобы не плодить метки по id.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(startTime).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordDBOperation записывает метрики операции с базой данных
func RecordDBOperation(operation string, duration time.Duration, err error) {
	status := statusLabel(err)
	dbOperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	dbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCacheOperation записывает метрики операции с хранилищем сессий
func RecordCacheOperation(operation string, duration time.Duration, err error) {
	status := statusLabel(err)
	sessionOperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	sessionOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordMLRequest записывает метрики вызова ML сервиса
func RecordMLRequest(endpoint string, duration time.Duration, err error) {
	mlRequestDuration.WithLabelValues(endpoint, statusLabel(err)).Observe(duration.Seconds())
}

// RecordRecommendationSource учитывает, откуда пришел результат рекомендаций
func RecordRecommendationSource(source string) {
	recommendationsTotal.WithLabelValues(source).Inc()
}

// RecordCircuitBreakerStateChange записывает изменение состояния circuit breaker
func RecordCircuitBreakerStateChange(name string, state int) {
	circuitBreakerState.WithLabelValues(name).Set(float64(state))
}
