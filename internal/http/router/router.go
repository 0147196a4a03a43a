package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/nobridge/nobridge-backend/internal/config"
	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/http/handlers"
	"github.com/nobridge/nobridge-backend/internal/http/middleware"
	"github.com/nobridge/nobridge-backend/internal/logger"
	"github.com/nobridge/nobridge-backend/internal/metrics"
)

// Handlers - все хэндлеры API.
type Handlers struct {
	Health       *handlers.HealthHandler
	Profile      *handlers.ProfileHandler
	Listing      *handlers.ListingHandler
	Inquiry      *handlers.InquiryHandler
	Conversation *handlers.ConversationHandler
	Verification *handlers.VerificationHandler
	Admin        *handlers.AdminHandler
	Notification *handlers.NotificationHandler
	WS           *handlers.WSHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser, limitStore limiter.Store) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(logger.Get()))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Подача заявок и запросов ограничена строже
	strict := middleware.RateLimitMiddleware(limitStore, cfg.StrictRateLimitLimit, cfg.StrictRateLimitPeriod)

	// Публичные маршруты
	public := api.Group("/")
	public.Use(middleware.OptionalAuthMiddleware(tokens))
	{
		public.GET("/listings", h.Listing.Browse)
		public.GET("/listings/:id", middleware.UUIDValidator("id"), h.Listing.Get)
	}
	api.GET("/ws", h.WS.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)

		sellerOnly := middleware.RequireRole(valueobject.RoleSeller)
		protected.POST("/listings", sellerOnly, h.Listing.Create)
		protected.GET("/my/listings", sellerOnly, h.Listing.ListMine)
		protected.PUT("/listings/:id/status", middleware.UUIDValidator("id"),
			middleware.RequireRole(valueobject.RoleSeller, valueobject.RoleAdmin), h.Listing.UpdateStatus)

		protected.POST("/inquiries", middleware.RequireRole(valueobject.RoleBuyer), strict, h.Inquiry.Create)
		protected.GET("/inquiries/my", h.Inquiry.ListMy)
		protected.GET("/inquiries/:id", middleware.UUIDValidator("id"), h.Inquiry.Get)
		protected.POST("/inquiries/:id/engage", middleware.UUIDValidator("id"), sellerOnly, h.Inquiry.Engage)
		protected.POST("/inquiries/:id/archive", middleware.UUIDValidator("id"), h.Inquiry.Archive)

		protected.POST("/conversations/check", middleware.RequireRole(valueobject.RoleBuyer), h.Conversation.CheckStatus)
		protected.GET("/conversations/my", h.Conversation.ListMy)
		protected.GET("/conversations/:id/messages", middleware.UUIDValidator("id"), h.Conversation.ListMessages)
		protected.POST("/conversations/:id/messages", middleware.UUIDValidator("id"), h.Conversation.SendMessage)

		protected.POST("/verification/request", strict, h.Verification.Request)
		protected.GET("/verification/request", h.Verification.ListMine)
		protected.POST("/verification/requests/:id/documents", middleware.UUIDValidator("id"), strict, h.Verification.UploadDocument)

		protected.GET("/notifications", h.Notification.ListNotifications)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), h.Notification.DeleteNotification)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireRole(valueobject.RoleAdmin))
	{
		admin.GET("/verification-queue", h.Admin.VerificationQueue)
		admin.PUT("/verification-queue/:id", middleware.UUIDValidator("id"), h.Admin.UpdateVerification)
		admin.GET("/engagement-queue", h.Admin.EngagementQueue)
		admin.POST("/inquiries/:id/facilitate", middleware.UUIDValidator("id"), h.Admin.Facilitate)
		admin.POST("/conversations/:id/review", middleware.UUIDValidator("id"), h.Admin.ReviewConversation)
	}

	return r
}
