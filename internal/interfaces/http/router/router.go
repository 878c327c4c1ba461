package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resto-bi/backend/internal/infrastructure/auth"
	"github.com/resto-bi/backend/internal/infrastructure/config"
	"github.com/resto-bi/backend/internal/infrastructure/logger"
	"github.com/resto-bi/backend/internal/interfaces/http/handler"
	"github.com/resto-bi/backend/internal/interfaces/http/middleware"
)

// saleIngestBodyLimit caps the size of an ingested sale payload.
const saleIngestBodyLimit = 4 << 20

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Analytics  *handler.AnalyticsHandler
	Sales      *handler.SalesHandler
	Stores     *handler.StoresHandler
	Dashboards *handler.DashboardHandler
	Cache      *handler.CacheHandler
}

// New builds the gin engine with the middleware chain and the full route
// table. Everything under /api/v1 is bearer-protected except login, health
// and shared-dashboard resolution.
func New(cfg *config.Config, log *zap.Logger, jwtService *auth.JWTService, h Handlers) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(corsMiddleware(cfg.HTTP))

	engine.GET("/health", h.System.Health)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtService))

	api.GET("/health", h.System.Health)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/me", h.Auth.Me)

	analytics := api.Group("/analytics")
	{
		analytics.GET("/revenue", h.Analytics.Revenue)
		analytics.GET("/products/top", h.Analytics.TopProducts)
		analytics.GET("/channels", h.Analytics.ChannelPerformance)
		analytics.GET("/summary", h.Analytics.Summary)
		analytics.GET("/products/margin", h.Analytics.ProductsMargin)
		analytics.GET("/delivery/performance", h.Analytics.DeliveryPerformance)
		analytics.GET("/customers/insights", h.Analytics.CustomerInsights)
		analytics.GET("/peak-hours", h.Analytics.PeakHoursHeatmap)
		analytics.GET("/alerts", h.Analytics.AnomalyAlerts)
		analytics.GET("/items/top", h.Analytics.TopItems)
		analytics.GET("/products/customizations", h.Analytics.ProductCustomizations)
		analytics.GET("/payments/mix", h.Analytics.PaymentMix)
		analytics.GET("/cancellations", h.Analytics.Cancellations)
		analytics.GET("/delivery/regions", h.Analytics.DeliveryRegions)
		analytics.GET("/stores/growth", h.Analytics.StoreGrowth)
		analytics.GET("/products/seasonality", h.Analytics.ProductSeasonality)
		analytics.GET("/promotions", h.Analytics.Promotions)
		analytics.GET("/inventory/turnover", h.Analytics.InventoryTurnover)
	}

	api.GET("/sales", h.Sales.List)
	api.GET("/sales/:id", h.Sales.Get)
	api.POST("/sales", middleware.BodyLimit(saleIngestBodyLimit), h.Sales.Create)

	api.GET("/stores", h.Stores.List)
	api.GET("/channels", h.Stores.Channels)

	dashboards := api.Group("/dashboards")
	{
		dashboards.GET("", h.Dashboards.List)
		dashboards.POST("", h.Dashboards.Create)
		dashboards.GET("/default", h.Dashboards.GetDefault)
		dashboards.GET("/shared/:token", h.Dashboards.GetShared)
		dashboards.GET("/:id", h.Dashboards.Get)
		dashboards.PUT("/:id", h.Dashboards.Update)
		dashboards.DELETE("/:id", h.Dashboards.Delete)
		dashboards.POST("/:id/share", h.Dashboards.EnableSharing)
		dashboards.DELETE("/:id/share", h.Dashboards.DisableSharing)
	}

	cache := api.Group("/cache")
	{
		cache.GET("/status", h.Cache.Status)
		cache.POST("/clear", h.Cache.Clear)
		cache.POST("/invalidate/:pattern", h.Cache.Invalidate)
	}

	return engine
}

func corsMiddleware(cfg config.HTTPConfig) gin.HandlerFunc {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.CORSAllowHeaders
	}
	return middleware.CORSWithConfig(corsCfg)
}
