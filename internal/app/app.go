package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Ashokvp-05/hr-management-system-sub000/internal/config"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/metrics"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/middleware"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/connection"
	"github.com/Ashokvp-05/hr-management-system-sub000/internal/shared/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the HTTP engine and the connections it owns.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

// Close releases the connections opened by BuildApp.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func BuildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := connection.ConnectGORMWithRetry(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	rdb, err := connection.ConnectRedisWithRetry(ctx, cfg.Redis.Addr, cfg.Database.MaxRetries, logger)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}

	a := &App{DB: db, Redis: rdb}
	router, err := NewRouter(cfg, db, rdb, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Router = router
	return a, nil
}

// NewRouter builds the engine with the shared middleware chain, operational
// endpoints and every module's routes.
func NewRouter(cfg *config.Config, db *gorm.DB, rdb redis.Cmdable, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		middleware.RequestMetrics(),
	)

	if origins := cfg.Server.AllowedOrigins; len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", "X-Client-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler(db, rdb))
	router.GET("/metrics", func(c *gin.Context) {
		_ = metrics.UpdateDatabaseConnections(db)
		metrics.Handler().ServeHTTP(c.Writer, c.Request)
	})

	if err := registerModules(router, cfg, db, rdb, logger); err != nil {
		return nil, err
	}
	return router, nil
}

func healthHandler(db *gorm.DB, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "up", "redis": "up"}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "down"
			healthy = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			healthy = false
		}

		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable", status)
			return
		}
		response.Success(c, http.StatusOK, status, nil)
	}
}
