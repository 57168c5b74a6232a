package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/cache"
	"github.com/mikepea/astroclub/pkg/astroclub/config"
	"github.com/mikepea/astroclub/pkg/astroclub/database"
	"github.com/mikepea/astroclub/pkg/astroclub/events"
	"github.com/mikepea/astroclub/pkg/astroclub/logger"
	"github.com/mikepea/astroclub/pkg/astroclub/server"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
)

// @title Astroclub API
// @version 1.0
// @description Community backend for an astronomy club: members, groups, articles, observations and tasks.

// @host localhost:3000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Configure(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	// Connect to database and run auto-migrations
	db, err := database.ConnectAndMigrate(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Database migrations completed")

	tokens := auth.NewTokenManager(cfg.JWT)
	pub := events.New(cfg.Broker.URL, cfg.Broker.Queue)

	// Create the configured admin if no admin exists yet
	authService := auth.NewService(db, tokens, cfg.Auth.BcryptCost, pub)
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure admin user exists")
	}

	backend, err := storage.New(ctx, cfg.Uploads, cfg.Server.BaseURL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Uploads.Driver).Msg("Failed to set up upload storage")
	}
	deps := server.Deps{
		DB:         db,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		Uploads:    storage.NewUploads(backend, cfg.Uploads.MaxFileBytes),
		CacheTTL:   cfg.Redis.DefaultTTL,
		Events:     pub,
	}
	if local, ok := backend.(*storage.LocalStorage); ok {
		deps.UploadsDir = local.Dir()
	}

	// Redis is optional at startup. The client reconnects once it is reachable.
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, /api/redis requests will fail until it is reachable")
	}
	deps.Cache = cache.NewRedisStore(redisClient)

	r := server.NewRouter(deps)

	logger.Info().Str("addr", cfg.Addr()).Msg("Starting astroclub server")
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
