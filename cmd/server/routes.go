package main

import (
	"github.com/fttn/logproxy/internal/middleware"
	"github.com/fttn/logproxy/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// Ingestion endpoint: shared-secret bearer auth + per-IP rate limit.
	ingestLimiter := middleware.NewRateLimiter(20, 40)
	r.POST("/log",
		ingestLimiter.Middleware(),
		middleware.BearerAuth(svc.cfg.Ingest.Token),
		svc.ingestHandler.Log,
	)

	// Viewer API
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/login", svc.authHandler.Login)

		// Protected routes (any authenticated principal)
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			protected.GET("/logs", svc.logsHandler.List)
			protected.GET("/logs/stats", svc.logsHandler.Stats)
			protected.GET("/logs/functions", svc.logsHandler.Functions)
			protected.GET("/logs/ips", svc.logsHandler.IPs)
			protected.GET("/logs/export", svc.logsHandler.Export)
			protected.GET("/logs/:id", svc.logsHandler.Detail)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/users", svc.userHandler.List)
			admin.GET("/users/:id", svc.userHandler.GetByID)
			admin.POST("/users", svc.userHandler.Create)
			admin.PUT("/users/:id", svc.userHandler.Update)
			admin.PUT("/users/:id/password", svc.userHandler.SetPassword)
			admin.DELETE("/users/:id", svc.userHandler.Delete)
		}
	}
}
