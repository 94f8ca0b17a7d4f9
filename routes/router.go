package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qifu-app/qifu/config"
	"github.com/qifu-app/qifu/controllers"
	"github.com/qifu-app/qifu/engine"
	"github.com/qifu-app/qifu/middleware"
	"github.com/qifu-app/qifu/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, orch *engine.Orchestrator) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	ginLogPath := cfg.GinPath
	// Use application log level as reference
	gl, err := utils.NewRollingFileLogger(ginLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
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

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", utils.MetricsHandler())

	authController := controllers.NewAuthController(db)
	templeController := controllers.NewTempleController(db)
	checkInController := controllers.NewCheckInController(db, orch)
	passportController := controllers.NewPassportController(db, orch)
	leaderboardController := controllers.NewLeaderboardController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public temple directory
	templesGroup := api.Group("/temples")
	templesGroup.GET("", templeController.List)
	templesGroup.GET("/nearby", templeController.Nearby)
	templesGroup.GET("/:id", templeController.Get)

	// Public leaderboard
	api.GET("/leaderboard", leaderboardController.Top)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/checkins", checkInController.Create)
	protected.GET("/checkins", checkInController.List)
	protected.GET("/checkins/status", checkInController.Status)
	protected.GET("/passport", passportController.GetPassport)
	protected.GET("/statistics", passportController.GetStatistics)
	protected.POST("/statistics/rebuild", passportController.RebuildStatistics)
	protected.GET("/achievements", passportController.ListAchievements)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
