package routes

import (
	"slices"
	"time"

	"TSNiSAM/internal/config"
	"TSNiSAM/internal/controller"
	"TSNiSAM/internal/metrics"
	"TSNiSAM/internal/middleware"
	"TSNiSAM/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires middleware, controllers and the metrics endpoint.
func SetupRouter(cfg *config.Config, svc *service.AnalysisService, source string, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryMiddleware, middleware.ZerologMiddleware(), middleware.MetricsMiddleware(m))

	corsCfg := cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(cfg.Server.CORSOrigins, "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	controller.NewHealthController(source).RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api/v1")
	{
		// Tickers, prices, indicators, signal, recommendations, fundamentals, cache
		controller.NewMarketController(svc).RegisterRoutes(api)

		// Monte Carlo
		controller.NewSimulationController(svc).RegisterRoutes(api)

		// PNG charts
		controller.NewChartController(svc).RegisterRoutes(api)
	}

	return r
}
