package httpapi

import (
	"net/http"
	"time"

	"BubblyService/config"
	"BubblyService/internal/service"
	"BubblyService/pkg/apperrors"
	"BubblyService/pkg/server"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	ctxUserID       = "user_id"
	ctxSessionID    = "session_id"
	ctxSessionError = "session_error"
)

// SessionCookie хранит id сессии в cookie, подписанной securecookie (HMAC и метка времени)
type SessionCookie struct {
	name   string
	codec  *securecookie.SecureCookie
	ttl    time.Duration
	secure bool
}

// NewSessionCookie создает cookie сессии из настроек
func NewSessionCookie(cfg config.SessionConfig) *SessionCookie {
	codec := securecookie.New([]byte(cfg.Secret), nil).MaxAge(int(cfg.TTL.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &SessionCookie{
		name:   cfg.CookieName,
		codec:  codec,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
	}
}

// Encode подписывает id сессии
func (s *SessionCookie) Encode(id string) (string, error) {
	return s.codec.Encode(s.name, id)
}

// Decode проверяет подпись и срок действия и возвращает id сессии
func (s *SessionCookie) Decode(value string) (string, bool) {
	var id string
	if err := s.codec.Decode(s.name, value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Set записывает cookie сессии в ответ
func (s *SessionCookie) Set(c *gin.Context, id string) error {
	value, err := s.Encode(id)
	if err != nil {
		return apperrors.Internal("Failed to encode session cookie", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, value, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

// Clear удаляет cookie сессии у клиента
func (s *SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, "", -1, "/", "", s.secure, true)
}

// LoadSession находит сессию по cookie и кладет id пользователя в контекст.
// Запрос без сессии проходит дальше анонимным; недоступность хранилища запоминается для RequireAuth.
func LoadSession(auth service.AuthServiceInterface, cookie *SessionCookie, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(cookie.name)
		if err != nil || value == "" {
			c.Next()
			return
		}

		sessionID, ok := cookie.Decode(value)
		if !ok {
			cookie.Clear(c)
			c.Next()
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), sessionID)
		switch {
		case err == nil:
			c.Set(ctxUserID, session.UserID)
			c.Set(ctxSessionID, sessionID)
		case apperrors.Is(err, apperrors.KindAuth):
			cookie.Clear(c)
		default:
			server.WithRequestID(c.Request.Context(), logger).Warn("Failed to load session", zap.Error(err))
			c.Set(ctxSessionError, err)
		}

		c.Next()
	}
}

// RequireAuth пропускает только запросы с действующей сессией
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); ok {
			c.Next()
			return
		}

		if err, ok := c.Get(ctxSessionError); ok {
			status := apperrors.KindOf(err.(error)).HTTPStatus()
			c.AbortWithStatusJSON(status, gin.H{"error": apperrors.PublicMessage(err.(error), "Session store unavailable")})
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
}

func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func currentSessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
