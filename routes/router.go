package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/choretab/choretab/cache"
	"github.com/choretab/choretab/config"
	"github.com/choretab/choretab/controllers"
	"github.com/choretab/choretab/engine"
	"github.com/choretab/choretab/middleware"
	"github.com/choretab/choretab/utils"
)

// SetupRouter wires middlewares, controllers and the engine. All handles
// (database, cache, logger) are passed in; nothing here reaches for globals.
func SetupRouter(cfg config.AppConfig, db *gorm.DB, store *cache.Cache, log *zap.Logger) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.GinLogger(log))
	r.Use(utils.GinRecovery(log))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.ActorHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	sugar := log.Sugar()
	clock := engine.SystemClock(cfg.Location(), cfg.WeekStartDay())
	eng := engine.NewCoordinator(db, clock, sugar)

	taskCtrl := controllers.NewTaskController(eng, store, cfg, sugar)
	statsCtrl := controllers.NewStatsController(eng, store, cfg, sugar)

	api := r.Group("/api/v1")
	{
		tasks := api.Group("/tasks")
		tasks.GET("", taskCtrl.List)
		tasks.GET("/:id", taskCtrl.Get)
		tasks.GET("/:id/history", taskCtrl.History)

		acting := tasks.Group("")
		acting.Use(middleware.ActorRequired())
		{
			acting.POST("", taskCtrl.Create)
			acting.POST("/:id/claim", taskCtrl.Claim)
			acting.POST("/:id/start", taskCtrl.Start)
			acting.POST("/:id/complete", taskCtrl.Complete)
			acting.POST("/:id/approve", taskCtrl.Approve)
			acting.POST("/:id/reject", taskCtrl.Reject)
		}

		api.POST("/points/adjust", middleware.ActorRequired(), taskCtrl.Adjust)
		api.GET("/users/:id/stats", statsCtrl.GetUserStats)
		api.GET("/groups/:id/leaderboard", statsCtrl.GetLeaderboard)
	}

	return r
}
