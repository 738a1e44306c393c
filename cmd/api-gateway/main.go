package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/vehicle-records-api/api/swagger"
	"github.com/noah-isme/vehicle-records-api/internal/handler"
	"github.com/noah-isme/vehicle-records-api/internal/middleware"
	"github.com/noah-isme/vehicle-records-api/internal/models"
	"github.com/noah-isme/vehicle-records-api/internal/repository"
	"github.com/noah-isme/vehicle-records-api/internal/service"
	"github.com/noah-isme/vehicle-records-api/pkg/cache"
	"github.com/noah-isme/vehicle-records-api/pkg/config"
	"github.com/noah-isme/vehicle-records-api/pkg/database"
	"github.com/noah-isme/vehicle-records-api/pkg/jobs"
	"github.com/noah-isme/vehicle-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/vehicle-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/vehicle-records-api/pkg/middleware/requestid"
	"github.com/noah-isme/vehicle-records-api/pkg/sms"
)

// @title Vehicle Records API
// @version 1.0.0
// @description Document expiry reporting and reminder service
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg, "api-gateway")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Reports.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	documents := repository.NewDocumentRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		redisRepo := repository.NewCacheRepository(redisClient, "vehicle-records")
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, redisClient != nil)

	reports := service.NewExpiryReportService(service.ExpiryReportServiceParams{
		Aggregator: service.NewExpiryAggregator(documents, metrics, logr),
		Cache:      cacheSvc,
		Validator:  validator.New(),
		Metrics:    metrics,
		Logger:     logr,
		Config:     service.ExpiryReportConfig{CacheTTL: cfg.Reports.CacheTTL, Location: cfg.Location},
	})

	if cfg.Reminders.SchedulerEnabled {
		queue := startReminderScheduler(ctx, cfg, documents, metrics, logr)
		defer queue.Stop()
	}

	router := buildRouter(cfg, logr, metrics, service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer), reports, readinessChecks(db, redisClient))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, tokens *service.TokenService, reports *service.ExpiryReportService, checks map[string]handler.ReadinessCheck) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	reportHandler := handler.NewExpiryReportHandler(reports)
	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.Use(middleware.JWT(tokens))
	api.Use(middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleOperator))
	api.GET("/reports/expiries", reportHandler.List)
	api.GET("/reports/expiries/export", reportHandler.Export)

	return r
}

func startReminderScheduler(ctx context.Context, cfg *config.Config, documents *repository.DocumentRepository, metrics *service.MetricsService, logr *zap.Logger) *jobs.Queue {
	gateway := sms.NewClient(sms.Config{
		URL:          cfg.SMS.URL,
		APIKey:       cfg.SMS.APIKey,
		APIKeyHeader: cfg.SMS.APIKeyHeader,
		Timeout:      cfg.SMS.Timeout,
	}, logr.Named("sms"))
	notifier := service.NewExpiryNotifier(documents, gateway, metrics, logr.Named("notifier"), service.ExpiryNotifierConfig{
		LookaheadDays: cfg.Reminders.LookaheadDays,
		CountryCode:   cfg.SMS.CountryCode,
	})
	worker := service.NewExpiryScanWorker(notifier, logr)

	queue := jobs.NewQueue("expiry-reminders", worker.Handle, jobs.QueueConfig{Workers: 1, BufferSize: 1, Logger: logr})
	queue.Start(ctx)

	service.NewExpiryScheduler(queue, service.ExpirySchedulerConfig{
		Hour:     cfg.Reminders.RunAtHour,
		Minute:   cfg.Reminders.RunAtMinute,
		Location: cfg.Location,
	}, logr.Named("scheduler")).Start(ctx)
	return queue
}

func readinessChecks(db *sqlx.DB, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}
