package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCircuitOpen возвращается, когда circuit breaker не пропускает вызов
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState представляет состояние circuit breaker
type CircuitState int

const (
	// CircuitClosed вызовы проходят
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen пропускается один пробный вызов
	CircuitHalfOpen
	// CircuitOpen вызовы отклоняются до истечения resetTimeout
	CircuitOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// StateChangeFunc вызывается при каждом переходе состояния
type StateChangeFunc func(name string, state CircuitState)

// CircuitBreaker прекращает обращения к зависимости после серии ошибок
type CircuitBreaker struct {
	name             string
	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	lastStateChange  time.Time
	probeInFlight    bool
	mutex            sync.Mutex
	logger           *zap.Logger
	ignoredErrors    []error
	onStateChange    StateChangeFunc
}

// NewCircuitBreaker создает новый экземпляр CircuitBreaker.
// Ошибки из ignoredErrors (например, "не найдено") не считаются отказами.
func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration, logger *zap.Logger, ignoredErrors ...error) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		state:            CircuitClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		lastStateChange:  time.Now(),
		logger:           logger,
		ignoredErrors:    ignoredErrors,
	}
}

// DefaultCircuitBreakerOptions возвращает рекомендуемые настройки Circuit Breaker
func DefaultCircuitBreakerOptions() (int, time.Duration) {
	return 5, 30 * time.Second
}

// OnStateChange регистрирует обработчик смены состояния (метрики)
func (cb *CircuitBreaker) OnStateChange(fn StateChangeFunc) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.onStateChange = fn
}

// Execute выполняет функцию с учетом состояния circuit breaker
func (cb *CircuitBreaker) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if !cb.allowRequest() {
		cb.logger.Warn("Circuit breaker preventing operation execution",
			zap.String("breaker", cb.name),
			zap.String("operation", operation))
		return ErrCircuitOpen
	}

	err := fn(ctx)
	cb.handleResult(operation, err)

	return err
}

// allowRequest решает, пропускать ли вызов, и переводит open -> half-open по таймауту
func (cb *CircuitBreaker) allowRequest() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.lastStateChange) < cb.resetTimeout {
			return false
		}
		cb.transition(CircuitHalfOpen, "reset timeout elapsed")
		cb.probeInFlight = true
		return true
	case CircuitHalfOpen:
		// Только один пробный вызов одновременно
		if cb.probeInFlight {
			return false
		}
		cb.probeInFlight = true
		return true
	default:
		return false
	}
}

// handleResult обрабатывает результат выполнения функции
func (cb *CircuitBreaker) handleResult(operation string, err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	wasProbe := cb.state == CircuitHalfOpen
	if wasProbe {
		cb.probeInFlight = false
	}

	if err != nil && cb.isIgnoredError(err) {
		cb.logger.Debug("Игнорируем ошибку для circuit breaker",
			zap.String("breaker", cb.name),
			zap.String("operation", operation),
			zap.Error(err))
		err = nil
	}

	if err == nil {
		cb.failureCount = 0
		if wasProbe {
			cb.transition(CircuitClosed, operation)
		}
		return
	}

	if wasProbe {
		cb.transition(CircuitOpen, operation)
		return
	}

	cb.failureCount++
	if cb.state == CircuitClosed && cb.failureCount >= cb.failureThreshold {
		cb.transition(CircuitOpen, operation)
	}
}

// isIgnoredError проверяет, является ли ошибка игнорируемой
func (cb *CircuitBreaker) isIgnoredError(err error) bool {
	for _, ignoredErr := range cb.ignoredErrors {
		if errors.Is(err, ignoredErr) {
			return true
		}
	}
	return false
}

// transition меняет состояние; вызывается под мьютексом
func (cb *CircuitBreaker) transition(to CircuitState, reason string) {
	from := cb.state
	cb.state = to
	cb.lastStateChange = time.Now()
	if to == CircuitClosed {
		cb.failureCount = 0
	}

	cb.logger.Info("Circuit breaker state changed",
		zap.String("breaker", cb.name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.String("reason", reason),
		zap.Int("failures", cb.failureCount))

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, to)
	}
}

// GetState возвращает текущее состояние circuit breaker
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

// Name возвращает имя circuit breaker
func (cb *CircuitBreaker) Name() string {
	return cb.name
}
