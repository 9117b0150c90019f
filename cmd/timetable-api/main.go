package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-timetable/api/swagger"
	"github.com/noah-isme/sma-timetable/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable/internal/middleware"
	"github.com/noah-isme/sma-timetable/internal/repository"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/internal/store"
	"github.com/noah-isme/sma-timetable/pkg/cache"
	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/jobs"
	"github.com/noah-isme/sma-timetable/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable/pkg/middleware/requestid"
	"github.com/noah-isme/sma-timetable/pkg/storage"
)

// @title SMA Timetable API
// @version 1.0.0
// @description Constraint-based school timetabling: CSV dataset in, weekly timetable and report artifacts out.
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	csvStore := store.NewCSVStore(cfg.Dataset.DataDir, nil, logr)
	datasetSvc := service.NewDatasetService(csvStore, logr)
	if cfg.Dataset.SeedOnMissing {
		err = datasetSvc.LoadOrSeed(ctx)
	} else {
		err = datasetSvc.Reload(ctx)
	}
	if err != nil {
		logr.Sugar().Fatalw("failed to load dataset", "dir", cfg.Dataset.DataDir, "error", err)
	}

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "host", cfg.Redis.Host, "error", err)
		}
		defer client.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(client, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
	}

	var scheduleSvc *service.ScheduleService
	queue := jobs.NewQueue("solve", func(ctx context.Context, job jobs.Job) error {
		return scheduleSvc.HandleSolveJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.QueueSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		Logger:     logr,
	})
	scheduleSvc = service.NewScheduleService(datasetSvc, queue, cacheSvc, metricsSvc, nil, logr, service.ScheduleConfig{
		DefaultTimeLimit: cfg.Solver.TimeLimit,
		DefaultNodeLimit: cfg.Solver.NodeLimit,
	})
	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Reports.SignedURLSecret == "" {
		logr.Sugar().Warnw("REPORT_SIGNING_SECRET is empty, download tokens are forgeable")
	}
	reportStore, err := storage.NewLocalStorage(cfg.Reports.OutputDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report output dir", "dir", cfg.Reports.OutputDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportSvc := service.NewReportService(scheduleSvc, reportStore, signer,
		service.ReportConfig{APIPrefix: cfg.APIPrefix}, logr, nil, nil, nil)

	metricsHandler := handler.NewMetricsHandler(metricsSvc, datasetSvc)
	datasetHandler := handler.NewDatasetHandler(datasetSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	dataset := api.Group("/dataset")
	dataset.GET("/summary", datasetHandler.Summary)
	dataset.POST("/seed", datasetHandler.Seed)
	dataset.POST("/reload", datasetHandler.Reload)
	dataset.GET("/validation", datasetHandler.Validation)

	schedule := api.Group("/schedule")
	schedule.POST("/solve", scheduleHandler.Solve)
	schedule.POST("/jobs", scheduleHandler.EnqueueJob)
	schedule.GET("/jobs/:id", scheduleHandler.Job)
	schedule.GET("/assignments", scheduleHandler.Assignments)
	schedule.GET("/classes/:id", scheduleHandler.ClassTimetable)
	schedule.GET("/teachers/:id", scheduleHandler.TeacherTimetable)

	reports := api.Group("/reports")
	reports.POST("", reportHandler.Generate)
	reports.GET("", reportHandler.Manifest)
	reports.GET("/download", reportHandler.Download)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Sugar().Errorw("http shutdown failed", "error", err)
		}
	}()

	logr.Sugar().Infow("server starting",
		"addr", addr, "env", cfg.Env, "data_dir", cfg.Dataset.DataDir, "cache", cfg.Cache.Enabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
