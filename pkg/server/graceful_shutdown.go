package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// shutdownStep именованная функция завершения (HTTP сервер, пулы соединений и т.д.)
type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// GracefulShutdown обеспечивает корректное завершение работы сервиса
type GracefulShutdown struct {
	logger         *zap.Logger
	timeout        time.Duration
	mu             sync.Mutex
	steps          []shutdownStep
	shutdownSignal chan os.Signal
	done           chan struct{}
	once           sync.Once
}

// NewGracefulShutdown создает новый экземпляр GracefulShutdown
func NewGracefulShutdown(logger *zap.Logger, timeout time.Duration) *GracefulShutdown {
	gs := &GracefulShutdown{
		logger:         logger,
		timeout:        timeout,
		shutdownSignal: make(chan os.Signal, 1),
		done:           make(chan struct{}),
	}

	signal.Notify(gs.shutdownSignal, syscall.SIGINT, syscall.SIGTERM)

	return gs
}

// AddShutdownFunc регистрирует функцию завершения. Функции выполняются в обратном порядке.
func (gs *GracefulShutdown) AddShutdownFunc(name string, f func(context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.steps = append(gs.steps, shutdownStep{name: name, fn: f})
}

// AddHTTPServer регистрирует остановку HTTP сервера
func (gs *GracefulShutdown) AddHTTPServer(name string, srv *http.Server) {
	gs.AddShutdownFunc(name, func(ctx context.Context) error {
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// WaitWithContext блокирует выполнение до получения сигнала завершения или отмены контекста
func (gs *GracefulShutdown) WaitWithContext(ctx context.Context) {
	select {
	case sig := <-gs.shutdownSignal:
		gs.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		gs.logger.Info("Context cancelled, initiating shutdown")
	}

	gs.once.Do(func() {
		gs.shutdown()
		close(gs.done)
	})
}

// Done возвращает канал, который закрывается после завершения всех операций
func (gs *GracefulShutdown) Done() <-chan struct{} {
	return gs.done
}

// Shutdown инициирует процесс завершения работы и ждет его окончания.
// Повторные и конкурентные вызовы выполняют функции завершения один раз.
func (gs *GracefulShutdown) Shutdown() {
	gs.once.Do(func() {
		gs.shutdown()
		close(gs.done)
	})
	<-gs.done
}

// shutdown выполняет все зарегистрированные функции завершения
func (gs *GracefulShutdown) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
	defer cancel()

	gs.mu.Lock()
	steps := make([]shutdownStep, len(gs.steps))
	copy(steps, gs.steps)
	gs.mu.Unlock()

	// LIFO: сначала перестаем принимать запросы, потом закрываем хранилища
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.fn(ctx); err != nil {
			gs.logger.Error("Error during shutdown", zap.String("step", step.name), zap.Error(err))
			continue
		}
		gs.logger.Info("Shutdown step completed", zap.String("step", step.name))
	}

	gs.logger.Info("Graceful shutdown completed")
}
