package server

import (
	"fmt"

	"github.com/AndyVoronov/ObschiySbor-sub000/core/cache"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/clock"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/config"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/database"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/middleware"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/queue"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/storage"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/validator"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/auth"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/category"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/moderation"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/notification"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/participation"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run boots the API server, the task worker and the scheduler in one
// process.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(cfg.Server.LogLevel)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}

	redisCache, err := cache.New(cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
	}

	redisCfg := queue.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	notifier := queue.NewClient(redisCfg)
	defer notifier.Close()

	store := storage.New(storage.Config{
		Region:          cfg.Storage.Region,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Endpoint:        cfg.Storage.Endpoint,
	})

	clk := clock.New()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		if err := db.SQLx().PingContext(c.Request().Context()); err != nil {
			return c.JSON(503, map[string]string{"status": "degraded", "database": err.Error()})
		}
		status := map[string]string{"status": "ok"}
		if redisCache != nil {
			if err := redisCache.Ping(c.Request().Context()); err != nil {
				status["redis"] = "unavailable"
			}
		}
		return c.JSON(200, status)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	mw := middleware.NewMiddleware()

	// Leaf modules first; event and participation consume the block gate,
	// the category registry and the profile gender lookup.
	moderationSvc := moderation.Init(e, db, mw, notifier, clk)
	categorySvc := category.Init(e, db, redisCache)
	authSvc := auth.Init(e, db, mw)
	eventSvc, eventRepo := event.Init(e, db, mw, categorySvc, moderationSvc, notifier, store, clk)
	_, participationRepo := participation.Init(e, db, mw, eventRepo, moderationSvc, authSvc, notifier, clk)
	_, taskWorker := notification.Init(e, db, mw, participationRepo, eventSvc)

	worker := queue.NewServer(redisCfg)
	go func() {
		if err := worker.Run(taskWorker.Mux()); err != nil {
			logger.Fatal("task worker stopped", err)
		}
	}()

	scheduler, err := queue.NewScheduler(redisCfg)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Fatal("scheduler stopped", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "addr", addr)
	return e.Start(addr)
}
