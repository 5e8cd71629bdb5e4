package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryOptions настройки для механизма повторных попыток
type RetryOptions struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64
	// RetryableErrors пустой список означает "повторять при любой ошибке"
	RetryableErrors []error
}

// DefaultRetryOptions возвращает настройки по умолчанию
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
	}
}

// WithRetry выполняет fn до MaxRetries+1 раз с экспоненциальной задержкой.
// Используется только при старте сервиса; обращения к хранилищу в запросах не повторяются.
func WithRetry(ctx context.Context, logger *zap.Logger, operation string, options RetryOptions, fn func(context.Context) error) error {
	var err error

	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			if attempt > 0 {
				logger.Info("Operation succeeded after retries",
					zap.String("operation", operation),
					zap.Int("attempts", attempt+1))
			}
			return nil
		}

		if attempt >= options.MaxRetries {
			logger.Warn("All retry attempts failed",
				zap.String("operation", operation),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return err
		}

		if !isRetryable(err, options.RetryableErrors) {
			logger.Warn("Non-retryable error occurred",
				zap.String("operation", operation),
				zap.Error(err))
			return err
		}

		backoff := calculateBackoff(attempt, options)
		logger.Info("Retrying operation after error",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// isRetryable проверяет, нужно ли повторять операцию для данной ошибки
func isRetryable(err error, retryableErrors []error) bool {
	if len(retryableErrors) == 0 {
		return true
	}
	for _, retryableErr := range retryableErrors {
		if errors.Is(err, retryableErr) {
			return true
		}
	}
	return false
}

// calculateBackoff вычисляет задержку перед попыткой attempt+1
func calculateBackoff(attempt int, options RetryOptions) time.Duration {
	backoff := float64(options.InitialBackoff) * math.Pow(options.BackoffFactor, float64(attempt))

	if options.Jitter > 0 {
		backoff *= 1 + (rand.Float64()*2-1)*options.Jitter
	}

	if backoff > float64(options.MaxBackoff) {
		backoff = float64(options.MaxBackoff)
	}

	return time.Duration(backoff)
}
