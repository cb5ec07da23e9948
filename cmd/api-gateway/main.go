package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mie-portal/portal-api/api/swagger"
	"github.com/mie-portal/portal-api/internal/handler"
	internalmiddleware "github.com/mie-portal/portal-api/internal/middleware"
	"github.com/mie-portal/portal-api/internal/models"
	"github.com/mie-portal/portal-api/internal/repository"
	"github.com/mie-portal/portal-api/internal/service"
	"github.com/mie-portal/portal-api/pkg/cache"
	"github.com/mie-portal/portal-api/pkg/config"
	"github.com/mie-portal/portal-api/pkg/database"
	"github.com/mie-portal/portal-api/pkg/export"
	"github.com/mie-portal/portal-api/pkg/logger"
	corsmiddleware "github.com/mie-portal/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mie-portal/portal-api/pkg/middleware/requestid"
)

// @title MIE Portal API
// @version 1.0.0
// @description School management backend
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

	var redisClient *redis.Client
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			cacheEnabled = false
		}
	}

	// Repositories.
	accountRepo := repository.NewAccountRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	disciplinaryRepo := repository.NewDisciplinaryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)
	identitySvc := service.NewIdentityService(teacherRepo, studentRepo, adminRepo, logr)
	authSvc := service.NewAuthService(accountRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	registrationSvc := service.NewRegistrationService(accountRepo, studentRepo, teacherRepo, adminRepo, service.RegistrationConfig{
		DefaultPhotoURL: cfg.Accounts.DefaultPhotoURL,
		BcryptCost:      cfg.Accounts.BcryptCost,
	}, nil, logr)
	accountSvc := service.NewAccountService(accountRepo, teacherRepo, cacheSvc, cfg.Accounts.BcryptCost, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, identitySvc, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, subjectRepo, identitySvc, cacheSvc, nil, logr)
	adminSvc := service.NewAdminService(adminRepo, identitySvc, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, studentRepo, nil, logr)
	gradeSvc := service.NewGradeService(gradeRepo, scheduleRepo, studentRepo, accountRepo, identitySvc, nil, logr)
	disciplinarySvc := service.NewDisciplinaryService(disciplinaryRepo, studentRepo, identitySvc, nil, logr)
	reportSvc := service.NewReportService(gradeSvc, scheduleRepo, identitySvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc, accountSvc)
	accountHandler := handler.NewAccountHandler(accountSvc, registrationSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	disciplinaryHandler := handler.NewDisciplinaryHandler(disciplinarySvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix + "/v1")

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(internalmiddleware.JWT(authSvc))

	authed.GET("/auth/me", authHandler.Me)

	accounts := authed.Group("/accounts")
	accounts.GET("", internalmiddleware.RequireRoles(models.RoleAdmin), accountHandler.List)
	accounts.POST("", internalmiddleware.RequireRoles(models.RoleAdmin), accountHandler.Register)
	accounts.GET("/:id", internalmiddleware.RBAC(string(models.RoleAdmin), "SELF"), accountHandler.Get)
	accounts.PUT("/:id", internalmiddleware.RBAC(string(models.RoleAdmin), "SELF"), accountHandler.Update)
	accounts.DELETE("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), accountHandler.Delete)

	studentOwner := func(ctx context.Context, ref string) (string, error) {
		student, err := identitySvc.ResolveStudent(ctx, ref)
		if err != nil {
			return "", err
		}
		return student.AccountID, nil
	}
	teacherOwner := func(ctx context.Context, ref string) (string, error) {
		teacher, err := identitySvc.ResolveTeacher(ctx, ref)
		if err != nil {
			return "", err
		}
		return teacher.AccountID, nil
	}

	students := authed.Group("/students")
	students.GET("", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), studentHandler.List)
	students.GET("/:id", internalmiddleware.SelfOrRoles(studentOwner, models.RoleAdmin, models.RoleTeacher), studentHandler.Get)
	students.PUT("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), studentHandler.Update)

	teachers := authed.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.GET("/:id", teacherHandler.Get)
	teachers.PUT("/:id/subjects", internalmiddleware.SelfOrRoles(teacherOwner, models.RoleAdmin), teacherHandler.UpdateSubjects)

	admins := authed.Group("/admins", internalmiddleware.RequireRoles(models.RoleAdmin))
	admins.GET("", adminHandler.List)
	admins.GET("/:id", adminHandler.Get)

	subjects := authed.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.POST("", internalmiddleware.RequireRoles(models.RoleAdmin), subjectHandler.Create)
	subjects.PUT("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), subjectHandler.Update)
	subjects.DELETE("", internalmiddleware.RequireRoles(models.RoleAdmin), subjectHandler.DeleteMany)

	schedules := authed.Group("/schedules")
	schedules.GET("", scheduleHandler.List)
	schedules.GET("/:id", scheduleHandler.Get)
	schedules.POST("", internalmiddleware.RequireRoles(models.RoleAdmin), scheduleHandler.Create)
	schedules.PUT("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), scheduleHandler.Update)
	schedules.DELETE("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), scheduleHandler.Delete)

	grades := authed.Group("/grades")
	grades.GET("", gradeHandler.ListByStudent)
	grades.POST("", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), gradeHandler.Upsert)
	grades.GET("/roster/:teacher/:subject", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), gradeHandler.Roster)
	grades.DELETE("/:id", internalmiddleware.RequireRoles(models.RoleAdmin), gradeHandler.Delete)

	disciplinary := authed.Group("/disciplinary", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	disciplinary.GET("/student/:student_number", disciplinaryHandler.ListByStudent)
	disciplinary.POST("", disciplinaryHandler.Create)
	disciplinary.PUT("/:id", disciplinaryHandler.Update)
	disciplinary.DELETE("", disciplinaryHandler.DeleteMany)

	reports := authed.Group("/reports", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	reports.GET("/roster/:teacher/:subject", reportHandler.RosterReport)
	reports.GET("/teacher-load/:teacher", reportHandler.TeacherLoad)

	authed.GET("/metrics/snapshot", internalmiddleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
