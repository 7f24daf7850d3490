package api

import (
	"errors"
	"time"

	cocktailHandler "cocktail-generator/internal/api/handlers/cocktail"
	"cocktail-generator/internal/api/handlers/health"
	"cocktail-generator/internal/api/middleware"
	"cocktail-generator/internal/bootstrap"
	"cocktail-generator/internal/infrastructure/config"
	"cocktail-generator/internal/pkg/common"
	"cocktail-generator/internal/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetGinMode 依 debug 設定 gin 模式
func SetGinMode(debug bool) {
	if debug {
		gin.SetMode(gin.DebugMode)
		return
	}
	gin.SetMode(gin.ReleaseMode)
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
			break
		}
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	// 萬用來源不可同時允許憑證
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svcs *bootstrap.Services) (*gin.Engine, error) {
	if cfg == nil || svcs == nil {
		return nil, errors.New("router requires config and services")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 設置配置
	router.Use(func(c *gin.Context) {
		c.Set(health.ConfigKey, cfg)
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// 前端頁面
	router.GET("/", web.Index)

	// API 路由組
	cocktailHandler.NewHandler(svcs.Cocktail, svcs.Relay).Register(router.Group("/api"))

	common.LogInfo("Router setup completed successfully",
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Strings("cors_origins", cfg.CORS.AllowOrigins),
	)

	return router, nil
}
