package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lumenlearn/insight-api/internal/handler"
	appmiddleware "github.com/lumenlearn/insight-api/internal/middleware"
	"github.com/lumenlearn/insight-api/internal/repository"
	"github.com/lumenlearn/insight-api/internal/service"
	"github.com/lumenlearn/insight-api/pkg/cache"
	"github.com/lumenlearn/insight-api/pkg/config"
	"github.com/lumenlearn/insight-api/pkg/database"
	"github.com/lumenlearn/insight-api/pkg/export"
	"github.com/lumenlearn/insight-api/pkg/logger"
	corsmiddleware "github.com/lumenlearn/insight-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lumenlearn/insight-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Analytics.CatalogCacheOn {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CatalogCacheTTL, logr, true)
		defer cacheRepo.Close() //nolint:errcheck
	}

	insightSvc := service.NewInsightService(service.InsightServiceParams{
		Activities:  repository.NewActivityRepository(db),
		Enrollments: repository.NewEnrollmentRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Quizzes:     repository.NewQuizRepository(db),
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Logger:      logr,
		Config: service.InsightServiceConfig{
			WindowDays:      cfg.Analytics.WindowDays,
			MaxWindowDays:   cfg.Analytics.MaxWindowDays,
			CatalogCacheTTL: cfg.Analytics.CatalogCacheTTL,
		},
	})
	exportSvc := service.NewExportService(insightSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr, cfg.Export.Enabled)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(appmiddleware.Metrics(metricsSvc))

	ready := func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}

	handler.RegisterRoutes(r, cfg.APIPrefix,
		handler.NewReportHandler(insightSvc, exportSvc),
		handler.NewMetricsHandler(metricsSvc, ready),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Info("server stopped", zap.String("addr", addr))
}
