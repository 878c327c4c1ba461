package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appanalytics "github.com/resto-bi/backend/internal/application/analytics"
	appdashboard "github.com/resto-bi/backend/internal/application/dashboard"
	appsales "github.com/resto-bi/backend/internal/application/sales"
	domainanalytics "github.com/resto-bi/backend/internal/domain/analytics"
	"github.com/resto-bi/backend/internal/infrastructure/auth"
	"github.com/resto-bi/backend/internal/infrastructure/cache"
	"github.com/resto-bi/backend/internal/infrastructure/config"
	"github.com/resto-bi/backend/internal/infrastructure/logger"
	"github.com/resto-bi/backend/internal/infrastructure/persistence"
	"github.com/resto-bi/backend/internal/interfaces/http/handler"
	"github.com/resto-bi/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting restaurant BI backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// The cache is optional: when Redis is down the service starts anyway
	// and every aggregation runs against the database.
	var resultCache domainanalytics.ResultCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisResultCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, running without result cache", zap.Error(err))
		} else {
			resultCache = redisCache
			defer func() {
				if err := redisCache.Close(); err != nil {
					log.Error("Failed to close Redis client", zap.Error(err))
				}
			}()
		}
	}

	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)
	salesRepo := persistence.NewGormSalesRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)

	analyticsService := appanalytics.NewService(analyticsRepo, resultCache, log)
	if cfg.Cache.TTL > 0 {
		analyticsService = analyticsService.WithTTL(cfg.Cache.TTL)
	}
	salesService := appsales.NewService(salesRepo)
	dashboardService := appdashboard.NewService(dashboardRepo)

	jwtService := auth.NewJWTService(cfg.JWT)
	userStore := auth.NewStaticUserStore()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(cfg, log, jwtService, router.Handlers{
		System:     handler.NewSystemHandler(db, analyticsService, version),
		Auth:       handler.NewAuthHandler(userStore, jwtService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
		Sales:      handler.NewSalesHandler(salesService),
		Stores:     handler.NewStoresHandler(storeRepo),
		Dashboards: handler.NewDashboardHandler(dashboardService),
		Cache:      handler.NewCacheHandler(analyticsService),
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxy configuration", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
