package httpapi

import (
	"net/http"
	"time"

	"BubblyService/internal/models"
	"BubblyService/pkg/server"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions зависимости роутера помимо обработчика
type RouterOptions struct {
	Health      *server.HealthCheck
	AuthLimiter *RateLimiter
	Logger      *zap.Logger
}

// NewRouter собирает gin-роутер со всеми маршрутами API
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		opts.Logger.Error("Panic while handling request", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong!"})
	}))
	router.Use(server.TracingMiddleware(opts.Logger))
	router.Use(server.MetricsMiddleware())

	opts.Health.Register(router)

	api := router.Group("/api")
	api.Use(LoadSession(h.services.Auth, h.cookie, opts.Logger))

	api.GET("/health", func(c *gin.Context) {
		_, services := opts.Health.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"services":  services,
		})
	})

	authRoutes := api.Group("/auth")
	{
		limited := authRoutes.Group("")
		if opts.AuthLimiter != nil {
			limited.Use(opts.AuthLimiter.Middleware())
		}
		limited.POST("/register", h.Register)
		limited.POST("/login", h.Login)

		authRoutes.POST("/logout", RequireAuth(), h.Logout)
		authRoutes.GET("/me", RequireAuth(), h.Me)
		authRoutes.POST("/interests", RequireAuth(), h.SaveInterests)
		authRoutes.GET("/interests", RequireAuth(), h.UserInterests)
	}

	bubbles := api.Group("/bubbles")
	{
		bubbles.POST("", RequireAuth(), h.CreateBubble)
		bubbles.GET("", h.ListBubbles)
		bubbles.GET("/my", RequireAuth(), h.MyBubbles)
		bubbles.GET("/open", h.ListBubblesByStatus(models.BubbleOpen))
		bubbles.GET("/closed", h.ListBubblesByStatus(models.BubbleClosed))
		bubbles.GET("/:id", h.GetBubble)
		bubbles.POST("/:id/join", RequireAuth(), h.JoinBubble)
		bubbles.POST("/:id/leave", RequireAuth(), h.LeaveBubble)
		bubbles.POST("/:id/close", RequireAuth(), h.CloseBubble)
	}

	messages := api.Group("/messages", RequireAuth())
	{
		messages.POST("/:bubbleId", h.SendMessage)
		messages.GET("/:bubbleId", h.BubbleMessages)
		messages.GET("", h.RecentMessages)
	}

	interests := api.Group("/interests")
	{
		interests.GET("", h.AllInterests)
		interests.GET("/categories", h.InterestCategories)
		interests.GET("/category/:category", h.InterestsByCategory)
	}

	recommendations := api.Group("/recommendations")
	{
		recommendations.GET("", RequireAuth(), h.Recommendations)
		recommendations.POST("/train", h.TrainModel)
		recommendations.GET("/health", h.MLHealth)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}

// WithCORS разрешает запросы с cookie от фронтенда с указанных origin
func WithCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", server.RequestIDHeader},
		ExposedHeaders:   []string{server.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
