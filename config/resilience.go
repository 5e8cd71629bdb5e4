package config

import (
	"time"
)

// ResilienceConfig содержит настройки для механизмов отказоустойчивости
type ResilienceConfig struct {
	// MLBreaker настройки circuit breaker для вызовов /predict ML-сервиса
	MLBreaker struct {
		// FailureThreshold количество ошибок подряд, после которого запросы идут сразу в fallback
		FailureThreshold int
		// ResetTimeout время до пробного запроса
		ResetTimeout time.Duration
	}

	// Startup повторные попытки подключения к PostgreSQL и Redis при старте
	Startup struct {
		MaxRetries     int
		InitialBackoff time.Duration
		MaxBackoff     time.Duration
		BackoffFactor  float64
		Jitter         float64
	}

	// Redis таймаут одной команды к хранилищу сессий
	Redis struct {
		CommandTimeout time.Duration
	}
}

// DefaultResilienceConfig возвращает конфигурацию отказоустойчивости по умолчанию
func DefaultResilienceConfig() ResilienceConfig {
	config := ResilienceConfig{}

	config.MLBreaker.FailureThreshold = 5
	config.MLBreaker.ResetTimeout = 30 * time.Second

	// Контейнер с базой может подниматься дольше сервиса
	config.Startup.MaxRetries = 5
	config.Startup.InitialBackoff = 500 * time.Millisecond
	config.Startup.MaxBackoff = 8 * time.Second
	config.Startup.BackoffFactor = 2.0
	config.Startup.Jitter = 0.2

	config.Redis.CommandTimeout = 1 * time.Second

	return config
}
