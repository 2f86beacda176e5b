package routes

import (
	"log/slog"

	"office-panel/internal/api/handlers"
	"office-panel/internal/api/middleware"
	"office-panel/internal/config"
	"office-panel/internal/policy"
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	DB       *gorm.DB
	Services *services.Services
	Log      *slog.Logger
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {
	svc := deps.Services

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Auth, cfg)
	userHandler := handlers.NewUserHandler(svc.Users)
	deviceHandler := handlers.NewDeviceHandler(svc.Devices, svc.Notices)
	noticeHandler := handlers.NewNoticeHandler(svc.Notices)
	galleryHandler := handlers.NewGalleryHandler(svc.Galleries)
	charterHandler := handlers.NewCharterHandler(svc.Charters)
	contactHandler := handlers.NewContactHandler(svc.Contacts)
	tickerHandler := handlers.NewTickerHandler(svc.Tickers)
	requestHandler := handlers.NewActionRequestHandler(svc.ActionRequests)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	// Middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.Metrics())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.Security.CORSOrigins))
	r.Use(middleware.Identity(svc.Auth))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/media", cfg.Media.Root)

	authz := middleware.Authorize

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		login := []gin.HandlerFunc{}
		if cfg.Security.RateLimit.Enabled {
			login = append(login, middleware.RateLimit(cfg.Security.RateLimit.RequestsPerMinute))
		}
		api.POST("/auth/login", append(login, authHandler.Login)...)

		api.GET("/notices", authz(policy.Notices, policy.Read), noticeHandler.ListNotices)
		api.GET("/notices/published", authz(policy.Notices, policy.Read), noticeHandler.Published)
		api.GET("/notices/:id", authz(policy.Notices, policy.Read), noticeHandler.GetNotice)
		api.GET("/galleries", authz(policy.Galleries, policy.Read), galleryHandler.ListGalleries)
		api.GET("/galleries/:id", authz(policy.Galleries, policy.Read), galleryHandler.GetGallery)
		api.GET("/charters", authz(policy.Charters, policy.Read), charterHandler.ListCharters)
		api.GET("/charters/:id", authz(policy.Charters, policy.Read), charterHandler.GetCharter)
		api.GET("/tickers", authz(policy.Tickers, policy.Read), tickerHandler.ListActive)
		api.GET("/display/:id", deviceHandler.Display)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		auth := protected.Group("/auth")
		{
			auth.GET("/me", authHandler.GetMe)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/sessions", authHandler.GetSessions)
			auth.POST("/password", authHandler.ChangePassword)
			auth.PUT("/settings", authHandler.UpdateSettings)
		}

		protected.GET("/dashboard", authz(policy.Dashboard, policy.Read), reportHandler.Dashboard)
		protected.GET("/reports", authz(policy.Reports, policy.Read), reportHandler.Report)
		protected.GET("/audit-logs", authz(policy.AuditLogs, policy.Read), reportHandler.GetAuditLogs)

		users := protected.Group("/users")
		{
			users.GET("", authz(policy.Users, policy.Read), userHandler.GetUsers)
			users.GET("/:id", authz(policy.Users, policy.Read), userHandler.GetUser)
			users.POST("", authz(policy.Users, policy.Create), userHandler.CreateUser)
			users.PUT("/:id", authz(policy.Users, policy.Update), userHandler.UpdateUser)
			users.DELETE("/:id", authz(policy.Users, policy.Delete), userHandler.DeleteUser)
			users.POST("/:id/password", authz(policy.Users, policy.Update), userHandler.UpdatePassword)
		}

		devices := protected.Group("/devices")
		{
			devices.GET("", authz(policy.Devices, policy.Read), deviceHandler.ListDevices)
			devices.GET("/:id", authz(policy.Devices, policy.Read), deviceHandler.GetDevice)
			devices.POST("", authz(policy.Devices, policy.Create), deviceHandler.CreateDevice)
			devices.PUT("/:id", authz(policy.Devices, policy.Update), deviceHandler.UpdateDevice)
			devices.DELETE("/:id", authz(policy.Devices, policy.Delete), deviceHandler.DeleteDevice)
			devices.POST("/:id/heartbeat", authz(policy.Devices, policy.Heartbeat), deviceHandler.Heartbeat)
		}

		notices := protected.Group("/notices")
		{
			notices.POST("", authz(policy.Notices, policy.Create), noticeHandler.CreateNotice)
			notices.PUT("/:id", authz(policy.Notices, policy.Update), noticeHandler.UpdateNotice)
			notices.DELETE("/:id", authz(policy.Notices, policy.Delete), noticeHandler.DeleteNotice)
			notices.POST("/:id/recommend", authz(policy.Notices, policy.Recommend), noticeHandler.Recommend)
			notices.POST("/:id/approve", authz(policy.Notices, policy.Approve), noticeHandler.Approve)
			notices.POST("/:id/publish", authz(policy.Notices, policy.Publish), noticeHandler.Publish)
		}

		galleries := protected.Group("/galleries")
		{
			galleries.POST("", authz(policy.Galleries, policy.Create), galleryHandler.CreateGallery)
			galleries.PUT("/:id", authz(policy.Galleries, policy.Update), galleryHandler.UpdateGallery)
			galleries.DELETE("/:id", authz(policy.Galleries, policy.Delete), galleryHandler.DeleteGallery)
			galleries.POST("/:id/photos", authz(policy.Photos, policy.Create), galleryHandler.AddPhoto)
			galleries.DELETE("/:id/photos/:photo_id", authz(policy.Photos, policy.Delete), galleryHandler.DeletePhoto)
		}

		charters := protected.Group("/charters")
		{
			charters.POST("", authz(policy.Charters, policy.Create), charterHandler.CreateCharter)
			charters.PUT("/:id", authz(policy.Charters, policy.Update), charterHandler.UpdateCharter)
			charters.DELETE("/:id", authz(policy.Charters, policy.Delete), charterHandler.DeleteCharter)
		}

		contacts := protected.Group("/contacts")
		{
			contacts.GET("", authz(policy.Contacts, policy.Read), contactHandler.ListContacts)
			contacts.GET("/:id", authz(policy.Contacts, policy.Read), contactHandler.GetContact)
			contacts.POST("", authz(policy.Contacts, policy.Create), contactHandler.CreateContact)
			contacts.PUT("/:id", authz(policy.Contacts, policy.Update), contactHandler.UpdateContact)
			contacts.DELETE("/:id", authz(policy.Contacts, policy.Delete), contactHandler.DeleteContact)
		}

		tickers := protected.Group("/tickers")
		{
			tickers.GET("/all", authz(policy.Tickers, policy.ReadAll), tickerHandler.ListAll)
			tickers.POST("", authz(policy.Tickers, policy.Create), tickerHandler.CreateTicker)
			tickers.PUT("/:id", authz(policy.Tickers, policy.Update), tickerHandler.UpdateTicker)
			tickers.DELETE("/:id", authz(policy.Tickers, policy.Delete), tickerHandler.DeleteTicker)
		}

		requests := protected.Group("/action-requests")
		{
			requests.GET("", authz(policy.ActionRequests, policy.Read), requestHandler.ListRequests)
			requests.POST("", authz(policy.ActionRequests, policy.Create), requestHandler.CreateRequest)
			requests.POST("/:id/complete", authz(policy.ActionRequests, policy.Complete), requestHandler.CompleteRequest)
			requests.DELETE("/:id", authz(policy.ActionRequests, policy.Delete), requestHandler.DeleteRequest)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "API endpoint not found"})
	})
}
