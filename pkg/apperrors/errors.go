package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Kind классифицирует ошибку бизнес-логики для отображения в HTTP-статус
type Kind int

const (
	// KindInternal непредвиденная ошибка
	KindInternal Kind = iota
	// KindValidation отсутствующие или некорректные входные данные
	KindValidation
	// KindAuth нет сессии или неверные учетные данные
	KindAuth
	// KindForbidden действие запрещено для данного пользователя
	KindForbidden
	// KindNotFound сущность не найдена
	KindNotFound
	// KindState нарушение жизненного цикла (например, бабл закрыт)
	KindState
	// KindCapacity бабл заполнен
	KindCapacity
	// KindServiceUnavailable недоступен внешний сервис
	KindServiceUnavailable
)

// Error ошибка приложения с классификацией
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus возвращает HTTP-статус для вида ошибки
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindState, KindCapacity:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation создает ошибку валидации
func Validation(msg string) error { return newError(KindValidation, msg) }

// Auth создает ошибку аутентификации
func Auth(msg string) error { return newError(KindAuth, msg) }

// Forbidden создает ошибку доступа
func Forbidden(msg string) error { return newError(KindForbidden, msg) }

// NotFound создает ошибку "не найдено"
func NotFound(msg string) error { return newError(KindNotFound, msg) }

// State создает ошибку нарушения состояния
func State(msg string) error { return newError(KindState, msg) }

// Capacity создает ошибку переполнения
func Capacity(msg string) error { return newError(KindCapacity, msg) }

// ServiceUnavailable оборачивает ошибку внешнего сервиса
func ServiceUnavailable(msg string, err error) error {
	return &Error{Kind: KindServiceUnavailable, Message: msg, Err: err}
}

// Internal оборачивает непредвиденную ошибку
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf возвращает вид ошибки; неклассифицированные ошибки считаются внутренними
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if IsNotFound(err) {
		return KindNotFound
	}
	return KindInternal
}

// Is проверяет вид ошибки
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage возвращает сообщение, безопасное для клиента
func PublicMessage(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return fallback
}

// Список игнорируемых ошибок для механизмов отказоустойчивости
var (
	// ErrCacheMiss возвращается, когда ключ не найден в Redis
	ErrCacheMiss = redis.Nil

	// ErrRecordNotFound возвращается, когда запись не найдена в базе данных
	ErrRecordNotFound = gorm.ErrRecordNotFound

	// IgnoredErrors содержит список всех игнорируемых ошибок для circuit breaker
	IgnoredErrors = []error{
		ErrCacheMiss,
		ErrRecordNotFound,
	}
)

// IsNotFound проверяет, является ли ошибка ошибкой "запись не найдена"
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrCacheMiss) ||
		errors.Is(err, ErrRecordNotFound)
}
