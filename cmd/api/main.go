package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/courtside/courtside-api/api/swagger"
	"github.com/courtside/courtside-api/internal/handler"
	"github.com/courtside/courtside-api/internal/middleware"
	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/internal/repository"
	"github.com/courtside/courtside-api/internal/service"
	"github.com/courtside/courtside-api/pkg/cache"
	"github.com/courtside/courtside-api/pkg/config"
	"github.com/courtside/courtside-api/pkg/database"
	"github.com/courtside/courtside-api/pkg/logger"
	corsmiddleware "github.com/courtside/courtside-api/pkg/middleware/cors"
	reqidmiddleware "github.com/courtside/courtside-api/pkg/middleware/requestid"
)

// @title Courtside API
// @version 1.0.0
// @description Coach/student booking platform: programs, enrollments, sessions and tournaments
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	programRepo := repository.NewProgramRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	tournamentRepo := repository.NewTournamentRepository(db)

	programService := service.NewProgramService(programRepo, cacheService, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, programRepo, logr)
	tournamentService := service.NewTournamentService(tournamentRepo, cacheService, logr)
	exportService := service.NewExportService(enrollmentRepo, tournamentRepo, logr, nil, nil)

	programHandler := handler.NewProgramHandler(programService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	tournamentHandler := handler.NewTournamentHandler(tournamentService)
	exportHandler := handler.NewExportHandler(exportService, cfg.Exports.Enabled)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(cfg.JWT.Secret)
	coachOrAdmin := middleware.RequireRoles(models.RoleCoach, models.RoleAdmin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	programs := api.Group("/programs")
	{
		programs.GET("", programHandler.List)
		programs.GET("/:id", programHandler.Get)
		programs.POST("", auth, coachOrAdmin, programHandler.Create)
		programs.DELETE("/:id", auth, coachOrAdmin, programHandler.Delete)
	}

	enrollments := api.Group("/enrollments", auth)
	{
		enrollments.POST("", enrollmentHandler.Create)
		enrollments.GET("/:id", enrollmentHandler.Get)
		enrollments.PUT("/:id/attendance", coachOrAdmin, enrollmentHandler.MarkAttendance)
		enrollments.PUT("/:id/cancel", enrollmentHandler.Cancel)
		enrollments.PUT("/:id/complete", coachOrAdmin, enrollmentHandler.Complete)
		enrollments.DELETE("/:id/sessions/:sessionId", enrollmentHandler.CancelSession)
	}

	api.GET("/students/:studentId/enrollments", auth, enrollmentHandler.ListByStudent)
	api.GET("/students/:studentId/tournaments", auth, tournamentHandler.ListByStudent)
	api.GET("/coaches/:coachId/enrollments", auth, coachOrAdmin, enrollmentHandler.ListByCoach)
	api.GET("/coaches/:coachId/sessions/export", auth, coachOrAdmin, exportHandler.CoachSessions)

	tournaments := api.Group("/tournaments")
	{
		tournaments.GET("", tournamentHandler.List)
		tournaments.GET("/:id", tournamentHandler.Get)
		tournaments.GET("/:id/bracket/export", exportHandler.Bracket)
		tournaments.POST("", auth, adminOnly, tournamentHandler.Create)
		tournaments.DELETE("/:id", auth, adminOnly, tournamentHandler.Delete)
		tournaments.POST("/:id/registrations", auth, tournamentHandler.Register)
		tournaments.POST("/:id/bracket", auth, adminOnly, tournamentHandler.GenerateBracket)
		tournaments.PUT("/:id/matches/:matchId/result", auth, coachOrAdmin, tournamentHandler.ReportResult)
		tournaments.PUT("/:id/matches/:matchId/schedule", auth, coachOrAdmin, tournamentHandler.ScheduleMatch)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
