package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipzone/clipzone/internal/apperr"
	"github.com/clipzone/clipzone/internal/cache"
	"github.com/clipzone/clipzone/internal/engine"
	"github.com/clipzone/clipzone/internal/logging"
	"github.com/clipzone/clipzone/internal/middleware"
	"github.com/clipzone/clipzone/internal/reporting"
	"github.com/clipzone/clipzone/internal/storage"
	"github.com/clipzone/clipzone/pkg/models"
)

// AccountDirectory is the account store surface the handlers use directly.
// Everything else goes through the engine or the reporter.
type AccountDirectory interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	ListCreators(ctx context.Context) ([]*models.Account, error)
}

// ClipDirectory is the clip read surface the handlers use directly
type ClipDirectory interface {
	GetClip(ctx context.Context, id string) (*models.Clip, error)
}

// HealthChecker reports backing store liveness
type HealthChecker interface {
	Health(ctx context.Context) error
}

// API holds the wired dependencies for the HTTP handlers
type API struct {
	accounts AccountDirectory
	clips    ClipDirectory
	health   HealthChecker
	engine   *engine.Engine
	reporter *reporting.Reporter
	storage  *storage.Storage
	cache    *cache.Cache
	tokenTTL time.Duration
	logger   *logging.Logger
}

func setupRouter(api *API, rl *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	if rl != nil {
		router.Use(middleware.RateLimit(rl))
	}

	// Health check
	router.GET("/health", api.healthCheck)

	v1 := router.Group("/api/v1")

	// Auth
	auth := v1.Group("/auth")
	{
		auth.POST("/register", api.register)
		auth.POST("/login", api.login)
		auth.GET("/me", middleware.JWTAuth(), api.me)
	}

	// Clips
	clips := v1.Group("/clips", middleware.JWTAuth())
	{
		clips.POST("", middleware.RequireRole(models.RoleClipper), api.submitClip)
		clips.GET("/creators", api.listCreators)
		clips.GET("/clipper/dashboard", middleware.RequireRole(models.RoleClipper), api.clipperDashboard)
		clips.GET("/creator", middleware.RequireRole(models.RoleCreator), api.creatorClips)
		clips.GET("/:id/playback", api.clipPlayback)
		clips.PATCH("/:id/status", middleware.RequireRole(models.RoleCreator), api.moderateClip)
	}

	// Creator dashboard
	creator := v1.Group("/creator", middleware.JWTAuth(), middleware.RequireRole(models.RoleCreator))
	{
		creator.GET("/dashboard", api.creatorDashboard)
		creator.POST("/cpm", api.setCPM)
	}

	return router
}

// respondError maps a classified error onto an HTTP status
func respondError(c *gin.Context, err error) {
	status := http.StatusServiceUnavailable

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindUnavailable:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": apperr.MessageOf(err)})
}
