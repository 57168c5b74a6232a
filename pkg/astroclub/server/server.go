// Package server assembles the HTTP API from the feature handlers
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/astroclub/pkg/astroclub/articles"
	"github.com/mikepea/astroclub/pkg/astroclub/auth"
	"github.com/mikepea/astroclub/pkg/astroclub/cache"
	"github.com/mikepea/astroclub/pkg/astroclub/dashboard"
	"github.com/mikepea/astroclub/pkg/astroclub/events"
	"github.com/mikepea/astroclub/pkg/astroclub/groups"
	"github.com/mikepea/astroclub/pkg/astroclub/images"
	"github.com/mikepea/astroclub/pkg/astroclub/logger"
	"github.com/mikepea/astroclub/pkg/astroclub/members"
	"github.com/mikepea/astroclub/pkg/astroclub/observations"
	"github.com/mikepea/astroclub/pkg/astroclub/storage"
	"github.com/mikepea/astroclub/pkg/astroclub/tasks"
	"github.com/mikepea/astroclub/pkg/astroclub/users"
	"github.com/mikepea/astroclub/pkg/astroclub/validation"
	"gorm.io/gorm"
)

// Deps are the shared components the handlers are built from
type Deps struct {
	DB         *gorm.DB
	Tokens     *auth.TokenManager
	BcryptCost int
	Uploads    *storage.Uploads
	// UploadsDir is served at /uploads when set
	UploadsDir string
	Cache      cache.Store
	CacheTTL   time.Duration
	Events     events.Publisher
}

// NewRouter returns the engine with every route registered under /api
func NewRouter(d Deps) *gin.Engine {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	validation.Register()

	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.UploadsDir != "" {
		r.Static("/uploads", d.UploadsDir)
	}

	requireAuth := auth.Middleware(d.Tokens)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"service": "astroclub",
			})
		})

		// Auth routes (public, updatePassword guards itself)
		authService := auth.NewService(d.DB, d.Tokens, d.BcryptCost, d.Events)
		auth.NewHandler(authService, d.Tokens).RegisterRoutes(api.Group("/auth"))

		// Users routes (protected, role changes admin only)
		usersHandler := users.NewHandler(users.NewService(d.DB, d.Uploads), auth.RequireAdmin())
		usersHandler.RegisterRoutes(api.Group("/users", requireAuth))

		// Groups and articles: reads are public, writes protected
		groups.NewHandler(groups.NewService(d.DB), requireAuth).RegisterRoutes(api.Group("/groups"))
		articlesService := articles.NewService(d.DB, d.Uploads, d.Events)
		articles.NewHandler(articlesService, requireAuth).RegisterRoutes(api.Group("/articles"))
		images.NewHandler(images.NewService(d.DB, d.Uploads), requireAuth).RegisterRoutes(api.Group("/images"))

		// Protected resources
		members.NewHandler(members.NewService(d.DB, d.Events)).RegisterRoutes(api.Group("/members", requireAuth))
		observationsService := observations.NewService(d.DB, d.Uploads, d.Events)
		observations.NewHandler(observationsService).RegisterRoutes(api.Group("/observations", requireAuth))
		tasks.NewHandler(tasks.NewService(d.DB)).RegisterRoutes(api.Group("/tasks", requireAuth))
		dashboard.NewHandler(dashboard.NewService(d.DB)).RegisterRoutes(api.Group("/dashboard", requireAuth))

		// Redis passthrough (public)
		if d.Cache != nil {
			cache.NewHandler(d.Cache, d.CacheTTL).RegisterRoutes(api.Group("/redis"))
		}
	}

	return r
}
