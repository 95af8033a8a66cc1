package main

import (
	"github.com/fttn/logproxy/internal/config"
	"github.com/fttn/logproxy/internal/handlers"
	"github.com/fttn/logproxy/internal/models"
	"github.com/fttn/logproxy/internal/services"
	"github.com/fttn/logproxy/internal/utils"
	"github.com/fttn/logproxy/pkg/logger"
)

// appServices holds all initialized handlers and the shared configuration
// the routes need. The database handle is injected into each handler at
// construction; nothing hangs off a package-level global.
type appServices struct {
	cfg           *config.Config
	healthHandler *handlers.HealthHandler
	ingestHandler *handlers.IngestHandler
	authHandler   *handlers.AuthHandler
	logsHandler   *handlers.LogsHandler
	userHandler   *handlers.UserHandler
}

// bootstrap initializes all application dependencies: database,
// migration, admin seeding, handlers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if cfg.Ingest.Token == "" {
		logger.Warn().Msg("no ingest token configured; all ingestion requests will be rejected")
	}

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed a default admin so a fresh install is reachable. The password
	// must be changed on first login.
	userService := services.NewAdminUserService(db)
	if err := userService.CreateAdminIfNotExists("admin", "admin123"); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed admin user")
	}

	return &appServices{
		cfg:           cfg,
		healthHandler: handlers.NewHealthHandler(db),
		ingestHandler: handlers.NewIngestHandler(db),
		authHandler:   handlers.NewAuthHandler(db, &cfg.JWT),
		logsHandler:   handlers.NewLogsHandler(db, cfg.Viewer.PageSize),
		userHandler:   handlers.NewUserHandler(db),
	}
}
