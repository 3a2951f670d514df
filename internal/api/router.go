package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kyzmat/marketplace/internal/api/handler"
	"github.com/kyzmat/marketplace/internal/api/middleware"
	"github.com/kyzmat/marketplace/internal/core/domain"
	"github.com/kyzmat/marketplace/internal/core/ports"
	"github.com/kyzmat/marketplace/internal/i18n"
	"github.com/kyzmat/marketplace/internal/infrastructure/http/handlers"
)

// Dependencies is everything the HTTP layer needs. Mongo and Redis are only
// used by the readiness probe and may be nil.
type Dependencies struct {
	Auth          ports.AuthService
	Jobs          ports.JobService
	Chat          ports.ChatService
	Notifications ports.NotificationService
	Moderation    ports.ModerationService
	Preferences   ports.PreferenceService
	Streamer      handler.ConversationStreamer
	Translator    *i18n.Translator

	JWTSecret string
	Version   string
	Mongo     *mongo.Database
	Redis     redis.Cmdable
	Log       zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry, where the domain metrics live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Translator)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig(d.Registry)))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(middleware.Language(d.Translator))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler(d.Version)
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Translator)
	jobHandler := handler.NewJobHandler(d.Jobs, d.Moderation, d.Translator)
	chatHandler := handler.NewChatHandler(d.Chat, d.Streamer, d.Translator)
	notificationHandler := handler.NewNotificationHandler(d.Notifications, d.Translator)
	adminHandler := handler.NewAdminHandler(d.Moderation, d.Translator)
	preferenceHandler := handler.NewPreferenceHandler(d.Preferences)

	authMiddleware := middleware.Auth(d.JWTSecret)
	activeAccount := middleware.ActiveAccount(d.Auth)
	optionalAuth := middleware.OptionalAuth(d.JWTSecret)

	v1 := e.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/categories", jobHandler.Categories)
	v1.GET("/jobs", jobHandler.List, optionalAuth)
	v1.GET("/jobs/:id", jobHandler.Get, optionalAuth)
	v1.GET("/jobs/:id/similar", jobHandler.Similar, optionalAuth)
	v1.GET("/preferences", preferenceHandler.Get, optionalAuth)
	v1.PUT("/preferences", preferenceHandler.Update, optionalAuth)

	// --- Authenticated routes ---
	me := v1.Group("/me", authMiddleware, activeAccount)
	me.GET("", authHandler.Me)
	me.PATCH("", authHandler.UpdateMe)
	me.GET("/jobs", jobHandler.Mine)
	me.GET("/earnings", jobHandler.Earnings)

	jobs := v1.Group("/jobs", authMiddleware, activeAccount)
	jobs.POST("", jobHandler.Create, middleware.RBAC(domain.RoleClient, domain.RoleAdmin))
	jobs.PUT("/:id", jobHandler.Update)
	jobs.DELETE("/:id", jobHandler.Delete)
	jobs.POST("/:id/accept", jobHandler.Accept, middleware.RBAC(domain.RoleExecutor))
	jobs.POST("/:id/complete", jobHandler.Complete)
	jobs.POST("/:id/cancel", jobHandler.Cancel)
	jobs.POST("/:id/reports", jobHandler.Report)

	conversations := v1.Group("/conversations", authMiddleware, activeAccount)
	conversations.GET("", chatHandler.List)
	conversations.POST("", chatHandler.Start)
	conversations.GET("/:id", chatHandler.Get)
	conversations.GET("/:id/messages", chatHandler.Messages)
	conversations.POST("/:id/messages", chatHandler.Send)
	conversations.POST("/:id/read", chatHandler.MarkRead)
	conversations.GET("/:id/ws", chatHandler.Stream)

	notifications := v1.Group("/notifications", authMiddleware, activeAccount)
	notifications.GET("", notificationHandler.List)
	notifications.DELETE("", notificationHandler.Clear)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.Delete)

	// --- Moderation (admin only) ---
	admin := v1.Group("/admin", authMiddleware, activeAccount, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", adminHandler.Users)
	admin.POST("/users/:id/block", adminHandler.BlockUser)
	admin.POST("/users/:id/unblock", adminHandler.UnblockUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.GET("/jobs", adminHandler.Jobs)
	admin.POST("/jobs/:id/block", adminHandler.BlockJob)
	admin.POST("/jobs/:id/unblock", adminHandler.UnblockJob)
	admin.DELETE("/jobs/:id", adminHandler.DeleteJob)
	admin.GET("/reports", adminHandler.Reports)
	admin.PATCH("/reports/:id", adminHandler.UpdateReport)
	admin.GET("/statistics", adminHandler.Statistics)

	return e
}

func promConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "marketplace",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
