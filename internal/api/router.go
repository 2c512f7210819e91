package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/auth"
	"github.com/jengzang/patroliq-backend-go/internal/config"
	"github.com/jengzang/patroliq-backend-go/internal/handler"
	"github.com/jengzang/patroliq-backend-go/internal/middleware"
	"github.com/jengzang/patroliq-backend-go/internal/observability"
	"github.com/jengzang/patroliq-backend-go/internal/registry"
	"github.com/jengzang/patroliq-backend-go/internal/repository"
	"github.com/jengzang/patroliq-backend-go/internal/service"
)

// TokenIssuer is the JWT issuer for tokens accepted by the API
const TokenIssuer = "patroliq"

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *sql.DB, metrics *observability.Metrics) (*gin.Engine, error) {
	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		Secret:     cfg.JWTSecret,
		Issuer:     TokenIssuer,
		Expiration: 24 * time.Hour,
	})
	if err != nil {
		return nil, err
	}

	incidents := repository.NewIncidentRepository(db)
	reg := registry.New(db, metrics)

	patrolHandler := handler.NewPatrolHandler(service.NewPatrolService(incidents, reg, service.PatrolConfig{
		GeoModel:  cfg.GeoModel,
		TempModel: cfg.TempModel,
		Hotspot:   cfg.Hotspot,
	}, metrics))
	temporalHandler := handler.NewTemporalHandler(service.NewTemporalService(incidents, reg, cfg.TempModel))
	analysisHandler := handler.NewAnalysisHandler(
		service.NewAnalysisService(incidents),
		service.NewProjectionService(incidents, reg, cfg.PCAModel),
	)
	registryHandler := handler.NewRegistryHandler(reg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(nil))
	r.Use(middleware.Metrics(metrics))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "degraded",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "PatrolIQ API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	{
		// 巡逻推荐
		patrol := api.Group("/patrol")
		{
			patrol.GET("/hotspots", patrolHandler.GetHotspots)
			patrol.GET("/zones", patrolHandler.GetZones)
			patrol.GET("/briefing", patrolHandler.GetBriefing)
		}

		temporal := api.Group("/temporal")
		{
			temporal.GET("/overview", temporalHandler.GetOverview)
			temporal.GET("/clusters", temporalHandler.GetClusters)
		}

		analysis := api.Group("/analysis")
		{
			analysis.GET("/summary", analysisHandler.GetSummary)
			analysis.GET("/heatmap", analysisHandler.GetHeatmap)
			analysis.GET("/severity", analysisHandler.GetSeverity)
			analysis.GET("/projection", analysisHandler.GetProjection)
		}

		// 实验追踪与模型注册
		api.GET("/experiments/:name", registryHandler.GetExperiment)
		api.GET("/experiments/:name/runs", registryHandler.GetRuns)
		api.GET("/runs/:id", registryHandler.GetRun)
		api.GET("/models", registryHandler.ListModels)
		api.GET("/models/:name/versions", registryHandler.GetVersions)

		write := api.Group("", middleware.RequireAuth(jwtService), middleware.RequireRole(auth.RoleTrainer, auth.RoleAdmin))
		{
			write.POST("/experiments", registryHandler.CreateExperiment)
			write.POST("/experiments/:name/runs", registryHandler.LogRun)
			write.POST("/models/:name/versions", registryHandler.RegisterVersion)
		}
	}

	return r, nil
}
