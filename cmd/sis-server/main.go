package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campushq/sis-core-api/api/swagger"
	"github.com/campushq/sis-core-api/internal/handler"
	internalmiddleware "github.com/campushq/sis-core-api/internal/middleware"
	"github.com/campushq/sis-core-api/internal/models"
	"github.com/campushq/sis-core-api/internal/repository"
	"github.com/campushq/sis-core-api/internal/service"
	"github.com/campushq/sis-core-api/pkg/cache"
	"github.com/campushq/sis-core-api/pkg/config"
	"github.com/campushq/sis-core-api/pkg/database"
	"github.com/campushq/sis-core-api/pkg/jobs"
	"github.com/campushq/sis-core-api/pkg/logger"
	corsmiddleware "github.com/campushq/sis-core-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/sis-core-api/pkg/middleware/requestid"
	"github.com/campushq/sis-core-api/pkg/storage"
)

// @title SIS Core API
// @version 0.1.0
// @description School information system read models, attendance statistics and scheduled reports
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Attendance.CacheTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewAttendanceStatsRepository(db)
	bellRepo := repository.NewBellScheduleRepository(db)
	substituteRepo := repository.NewSubstituteRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	executionRepo := repository.NewExecutionRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "sis-core-api",
	})
	accessSvc := service.NewAccessService(userRepo, validate, logr)
	platformSvc := service.NewPlatformService(metricsSvc, logr, cfg.Platform.Enabled)
	statsSvc := service.NewAttendanceStatsService(statsRepo, cacheSvc, logr, service.AttendanceStatsConfig{
		CacheTTL:         cfg.Attendance.CacheTTL,
		ChronicThreshold: cfg.Attendance.ChronicThreshold,
	})
	bellSvc := service.NewBellScheduleService(bellRepo, cacheSvc, validate, logr, cfg.Schedules.CacheTTL)
	substituteSvc := service.NewSubstituteService(substituteRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(statsRepo, bellRepo, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.ResultTTL,
	}, logr, nil, nil)

	worker := service.NewExecutionWorker(executionRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
	worker.SetObserver(platformSvc)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	scheduleSvc := service.NewScheduleService(executionRepo, queue, exportSvc, logr, service.ScheduleServiceConfig{
		ResultTTL:       cfg.Reports.ResultTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})
	if cfg.Reports.Enabled {
		scheduleSvc.RecoverPendingExecutions(ctx)
		scheduleSvc.StartCleanup(ctx)
	}

	authHandler := handler.NewAuthHandler(authSvc, platformSvc)
	accessHandler := handler.NewAccessHandler(accessSvc, platformSvc)
	attendanceHandler := handler.NewAttendanceHandler(statsSvc)
	bellHandler := handler.NewBellScheduleHandler(bellSvc)
	substituteHandler := handler.NewSubstituteHandler(substituteSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	platformHandler := handler.NewPlatformHandler(platformSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

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

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", internalmiddleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/change-password", internalmiddleware.JWT(authSvc), authHandler.ChangePassword)

	protected := api.Group("")
	protected.Use(internalmiddleware.JWT(authSvc))

	protected.POST("/access/check", accessHandler.Check)

	protected.GET("/attendance/statistics",
		internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher),
		attendanceHandler.Statistics)

	if cfg.Schedules.Enabled {
		bell := protected.Group("/bell-schedules")
		bell.GET("", bellHandler.List)
		bell.GET("/:id", bellHandler.Get)
		bell.GET("/:id/view", bellHandler.View)
		adminOnly := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
		bell.POST("", adminOnly, internalmiddleware.Audit(userRepo, "bell_schedule.create", "bell_schedules"), bellHandler.Create)
		bell.PUT("/:id", adminOnly, internalmiddleware.Audit(userRepo, "bell_schedule.update", "bell_schedules"), bellHandler.Update)
		bell.DELETE("/:id", adminOnly, internalmiddleware.Audit(userRepo, "bell_schedule.delete", "bell_schedules"), bellHandler.Delete)
		bell.POST("/:id/overrides", adminOnly, internalmiddleware.Audit(userRepo, "bell_schedule.override", "bell_schedules"), bellHandler.AddOverride)
	}

	if cfg.Substitutes.Enabled {
		subs := protected.Group("/substitutes")
		subs.GET("", internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher), substituteHandler.List)
		subs.GET("/:id", internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher), substituteHandler.Get)
		subs.POST("", internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), internalmiddleware.Audit(userRepo, "substitute.create", "substitute_assignments"), substituteHandler.Create)
		subs.DELETE("/:id", internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), internalmiddleware.Audit(userRepo, "substitute.delete", "substitute_assignments"), substituteHandler.Delete)
	}

	protected.GET("/students/:id/summary",
		internalmiddleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleAdmin), string(models.RoleTeacher), "SELF"),
		studentHandler.Summary)

	if cfg.Reports.Enabled {
		schedules := protected.Group("/schedules")
		reportRoles := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)
		schedules.POST("/reports", reportRoles, scheduleHandler.ScheduleReport)
		schedules.GET("/executions", reportRoles, scheduleHandler.ListExecutions)
		schedules.GET("/executions/:id", reportRoles, scheduleHandler.GetExecution)
		schedules.POST("/executions/:id/cancel", reportRoles, scheduleHandler.Cancel)
		// Download authenticates via the signed token, not the JWT.
		api.GET("/schedules/executions/download/:token", scheduleHandler.Download)
	}

	if cfg.Platform.Enabled {
		platform := protected.Group("/platform")
		platform.Use(internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
		platform.GET("/olap", platformHandler.OLAP)
		platform.GET("/aiops", platformHandler.AIOps)
		platform.GET("/quantum", platformHandler.Quantum)
		platform.GET("/zero-trust", platformHandler.ZeroTrust)
		platform.GET("/system", platformHandler.SystemMetrics)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}
