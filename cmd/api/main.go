package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Rahi-Raushan/stu-mag-api/api/swagger"
	"github.com/Rahi-Raushan/stu-mag-api/internal/handler"
	"github.com/Rahi-Raushan/stu-mag-api/internal/middleware"
	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	"github.com/Rahi-Raushan/stu-mag-api/internal/repository"
	"github.com/Rahi-Raushan/stu-mag-api/internal/service"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/cache"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/config"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/database"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/logger"
	corsmiddleware "github.com/Rahi-Raushan/stu-mag-api/pkg/middleware/cors"
	reqidmiddleware "github.com/Rahi-Raushan/stu-mag-api/pkg/middleware/requestid"
)

// @title Student Management API
// @version 1.0.0
// @description Enrollment portal API: course catalog, enrollment request pipeline and admin analytics.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	accountRepo := repository.NewAccountRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)

	authSvc := service.NewAuthService(accountRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(accountRepo, requestRepo, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, accountRepo, cacheSvc, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, courseRepo, accountRepo, cacheSvc, logr)
	analyticsSvc := service.NewAnalyticsService(accountRepo, courseRepo, requestRepo, cacheSvc, logr, service.AnalyticsServiceConfig{
		CacheTTL:    cfg.Analytics.CacheTTL,
		RecentLimit: cfg.Analytics.RecentLimit,
	})
	reportSvc := service.NewReportService(requestRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, requestSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

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

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}

	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		students := authed.Group("/students")
		{
			students.GET("", middleware.RequireRoles(models.RoleAdmin), studentHandler.List)
			students.GET("/profile", middleware.RequireRoles(models.RoleStudent), studentHandler.Profile)
			students.PUT("/profile", middleware.RequireRoles(models.RoleStudent), studentHandler.UpdateProfile)
			students.GET("/my-courses", middleware.RequireRoles(models.RoleStudent), studentHandler.MyCourses)
			students.GET("/my-requests", middleware.RequireRoles(models.RoleStudent), studentHandler.MyRequests)
			students.GET("/:id", middleware.RequireRoles(models.RoleAdmin), studentHandler.Get)
			students.GET("/:id/courses", middleware.RBAC(string(models.RoleAdmin), "SELF"), studentHandler.Courses)
			students.PUT("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), studentHandler.Update)
			students.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), studentHandler.Delete)
		}

		authed.POST("/courses", middleware.RequireRoles(models.RoleAdmin), courseHandler.Create)
		authed.PUT("/courses/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Update)
		authed.DELETE("/courses/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Delete)

		authed.POST("/request/:courseId", middleware.RequireRoles(models.RoleStudent), requestHandler.Submit)
		authed.GET("/requests", middleware.RequireRoles(models.RoleAdmin), requestHandler.List)
		authed.PUT("/request/:id/approve", middleware.RequireRoles(models.RoleAdmin), requestHandler.Approve)
		authed.PUT("/request/:id/reject", middleware.RequireRoles(models.RoleAdmin), requestHandler.Reject)

		authed.GET("/analytics/overview", middleware.RequireRoles(models.RoleAdmin), analyticsHandler.Overview)
		if cfg.Reports.Enabled {
			authed.GET("/reports/requests", middleware.RequireRoles(models.RoleAdmin), reportHandler.Requests)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
