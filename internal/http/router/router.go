package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/config"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers"
	"github.com/ignatzorin/marketplace-backend/internal/http/middleware"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	listingHandler *handlers.ListingHandler,
	claimHandler *handlers.ClaimHandler,
	photoHandler *handlers.PhotoHandler,
	activityHandler *handlers.ActivityHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/photos", http.Dir(cfg.PhotoStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/listings", listingHandler.ListListings)
	api.GET("/listings/:id", middleware.UUIDValidator("id"), listingHandler.GetListing)
	api.GET("/listings/:id/claims", middleware.UUIDValidator("id"), claimHandler.ListClaims)
	api.GET("/listings/:id/photos", middleware.UUIDValidator("id"), photoHandler.ListPhotos)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.GetMe)
		protected.PUT("/profile", profileHandler.UpdateMe)

		protected.POST("/listings", listingHandler.CreateListing)
		protected.GET("/listings/my", listingHandler.ListMyListings)
		protected.PUT("/listings/:id", middleware.UUIDValidator("id"), listingHandler.UpdateListing)
		protected.DELETE("/listings/:id", middleware.UUIDValidator("id"), listingHandler.DeleteListing)
		protected.POST("/listings/:id/close", middleware.UUIDValidator("id"), listingHandler.CloseListing)

		// Торги: ставки, предложения и расчёт
		claimRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
		protected.POST("/listings/:id/bids", middleware.UUIDValidator("id"), claimRateLimit, claimHandler.PlaceBid)
		protected.POST("/listings/:id/offers", middleware.UUIDValidator("id"), claimRateLimit, claimHandler.MakeOffer)
		protected.POST("/listings/:id/settle", middleware.UUIDValidator("id"), claimHandler.Settle)
		protected.POST("/claims/:kind/:id/complete", middleware.UUIDValidator("id"), claimHandler.CompletePayment)
		protected.POST("/claims/:kind/:id/cancel", middleware.UUIDValidator("id"), claimHandler.CancelClaim)

		// Интересы к fixed-price объявлениям
		protected.POST("/listings/:id/interest", middleware.UUIDValidator("id"), listingHandler.ShowInterest)
		protected.GET("/listings/:id/interests", middleware.UUIDValidator("id"), listingHandler.ListInterests)
		protected.GET("/interests/my", listingHandler.ListMyInterests)

		protected.POST("/listings/:id/photos", middleware.UUIDValidator("id"), photoHandler.UploadPhoto)
		protected.DELETE("/photos/:id", middleware.UUIDValidator("id"), photoHandler.DeletePhoto)

		protected.GET("/activity", activityHandler.GetMyActivity)
		protected.GET("/dashboard", activityHandler.GetDashboard)

		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
	}

	return r
}
