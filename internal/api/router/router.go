package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/api/handler"
	"github.com/undarez/camper-splatchs-sub001/internal/api/middleware"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/pkg/jwt"
	"github.com/undarez/camper-splatchs-sub001/pkg/redis"
)

// Setup builds the Gin engine. db and rdb may be nil; /health reports them.
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	pol *policy.Policy,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	db *gorm.DB,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── health ──
	r.GET("/health", healthCheck(db, rdb))

	requireAuth := middleware.JWTAuth(jwtMgr, rdb, logger)
	optionalAuth := middleware.OptionalAuth(jwtMgr, rdb, logger)
	writeLimit := middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", writeLimit, h.Auth.Register)
			auth.POST("/login", writeLimit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/logout", requireAuth, h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		stations := v1.Group("/stations")
		{
			stations.GET("", optionalAuth, h.Station.ListStations)
			stations.GET("/:id", optionalAuth, h.Station.GetStation)
			stations.GET("/:id/reviews", optionalAuth, h.Review.ListReviews)
			stations.POST("", requireAuth, writeLimit, h.Station.CreateStation)
			stations.DELETE("/:id", requireAuth, h.Station.DeleteStation)
			stations.POST("/:id/reviews", requireAuth, writeLimit, h.Review.SubmitReview)
		}

		admin := v1.Group("/admin")
		admin.Use(requireAuth, middleware.RequireAdmin(pol))
		{
			admin.GET("/stations/pending", h.Admin.ListPending)
			admin.PUT("/stations/:id/validate", h.Admin.ValidateStation)
			admin.GET("/export/stations", h.Export.ExportStations)
		}
	}

	return r
}

func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "skipped", "redis": "disabled"}

		if db != nil {
			checks["database"] = "ok"
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			}
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				// Redis is optional; report but stay healthy
				checks["redis"] = "degraded"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
