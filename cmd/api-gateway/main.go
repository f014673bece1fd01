package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/abdelrahman-hamdy/itqan-platform-sub033/api/swagger"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/handler"
	internalmiddleware "github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/middleware"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/repository"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/service"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/cache"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/config"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/database"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/logger"
	corsmiddleware "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/middleware/cors"
	reqidmiddleware "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/middleware/requestid"
)

// @title Itqan Unified API
// @version 0.1.0
// @description Unified session, subscription and statistics reads
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var (
		cacheStore service.CacheStore
		cacheRepo  *repository.CacheRepository
	)
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, serving reads from postgres only", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			cacheStore = cacheRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheStore, metricsSvc, cfg.Cache.DefaultTTL, logr, cfg.Cache.Enabled)

	validate := validator.New()
	classifier := service.NewRecordClassifier(logr, metricsSvc, cfg.Unified.DefaultCurrency, cfg.Unified.ExpiryWindow)

	sessionAggregator := service.NewSessionAggregator(service.SessionAggregatorParams{
		Store:      repository.NewSessionRepository(db),
		Cache:      cacheSvc,
		Classifier: classifier,
		Metrics:    metricsSvc,
		Validator:  validate,
		Logger:     logr,
		Config: service.SessionAggregatorConfig{
			CacheTTL:     cfg.Unified.SessionsTTL,
			StoreTimeout: cfg.Unified.StoreTimeout,
		},
	})
	subscriptionAggregator := service.NewSubscriptionAggregator(service.SubscriptionAggregatorParams{
		Store:      repository.NewSubscriptionRepository(db),
		Cache:      cacheSvc,
		Classifier: classifier,
		Metrics:    metricsSvc,
		Validator:  validate,
		Logger:     logr,
		Config: service.SubscriptionAggregatorConfig{
			CacheTTL:     cfg.Unified.SubscriptionsTTL,
			StoreTimeout: cfg.Unified.StoreTimeout,
		},
	})
	statisticsSvc := service.NewStatisticsService(service.StatisticsServiceParams{
		Store:     repository.NewStatisticsRepository(db),
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.StatisticsConfig{
			CacheTTL:     cfg.Unified.StatisticsTTL,
			OverviewTTL:  cfg.Unified.OverviewTTL,
			StoreTimeout: cfg.Unified.StoreTimeout,
		},
	})

	sessionHandler := handler.NewUnifiedSessionHandler(sessionAggregator)
	subscriptionHandler := handler.NewUnifiedSubscriptionHandler(subscriptionAggregator)
	statisticsHandler := handler.NewUnifiedStatisticsHandler(statisticsSvc)
	cacheHandler := handler.NewUnifiedCacheHandler(sessionAggregator, subscriptionAggregator, statisticsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		cacheStatus := "disabled"
		if cacheRepo != nil {
			cacheStatus = "ok"
			if err := cacheRepo.Ping(c.Request.Context()); err != nil {
				cacheStatus = "degraded"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "cache": cacheStatus})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/system", metricsHandler.System)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	unified := r.Group(cfg.APIPrefix + "/unified")
	{
		sessions := unified.Group("/sessions")
		sessions.GET("", sessionHandler.List)
		sessions.GET("/instructor", sessionHandler.Instructor)
		sessions.GET("/upcoming", sessionHandler.Upcoming)
		sessions.GET("/today", sessionHandler.Today)
		sessions.GET("/ongoing", sessionHandler.Ongoing)
		sessions.GET("/next", sessionHandler.Next)
		sessions.GET("/calendar", sessionHandler.Calendar)
		sessions.GET("/counts", sessionHandler.Counts)
		sessions.DELETE("/cache", sessionHandler.ClearCache)

		subscriptions := unified.Group("/subscriptions")
		subscriptions.GET("", subscriptionHandler.List)
		subscriptions.GET("/batch", subscriptionHandler.Batch)
		subscriptions.GET("/active", subscriptionHandler.Active)
		subscriptions.GET("/grouped", subscriptionHandler.Grouped)
		subscriptions.GET("/counts", subscriptionHandler.Counts)
		subscriptions.GET("/summary", subscriptionHandler.Summary)
		subscriptions.GET("/has-active", subscriptionHandler.HasActive)
		subscriptions.DELETE("/cache", subscriptionHandler.ClearCache)
		subscriptions.GET("/:kind/:id", subscriptionHandler.Get)

		statistics := unified.Group("/statistics")
		statistics.GET("/student", statisticsHandler.Student)
		statistics.GET("/students", statisticsHandler.Students)
		statistics.GET("/attendance", statisticsHandler.Attendance)
		statistics.GET("/overview", statisticsHandler.Overview)
		statistics.DELETE("/cache", statisticsHandler.ClearCache)

		unified.DELETE("/cache", cacheHandler.Clear)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
