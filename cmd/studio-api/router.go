package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dance-studio-api/api/swagger"
	"github.com/noah-isme/dance-studio-api/internal/handler"
	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/pkg/config"
	"github.com/noah-isme/dance-studio-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dance-studio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dance-studio-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, a *app, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics, "/metrics", "/health", "/ready"))

	metricsHandler := handler.NewMetricsHandler(a.metrics, a.db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(a.auth, a.users)
	studentHandler := handler.NewStudentHandler(a.students)
	teacherHandler := handler.NewTeacherHandler(a.teachers)
	hallHandler := handler.NewHallHandler(a.halls)
	classHandler := handler.NewClassHandler(a.classes, a.enrollment, a.students)
	attendanceHandler := handler.NewAttendanceHandler(a.attendance, a.students)
	billingHandler := handler.NewBillingHandler(a.billing, a.students)
	reportHandler := handler.NewReportHandler(a.reports)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	student := middleware.RequireRoles(models.RoleStudent)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(a.auth))

	secured.GET("/users/me", authHandler.Me)

	classes := secured.Group("/classes")
	classes.GET("", classHandler.List)
	classes.GET("/available", student, classHandler.Available)
	classes.POST("", admin, classHandler.Create)
	classes.PUT("/:id", admin, classHandler.Update)
	classes.DELETE("/:id", admin, classHandler.Delete)
	classes.POST("/:id/enroll", middleware.RequireRoles(models.RoleAdmin, models.RoleStudent), classHandler.Enroll)

	attendance := secured.Group("/attendance")
	attendance.PUT("/:id", admin, attendanceHandler.Mark)
	attendance.GET("/student/:id", attendanceHandler.ByStudent)
	attendance.GET("/class/:id", staff, attendanceHandler.ByClass)

	halls := secured.Group("/halls")
	halls.GET("", hallHandler.List)
	halls.POST("", admin, hallHandler.Create)
	halls.PUT("/:id", admin, hallHandler.Update)

	students := secured.Group("/students")
	students.GET("", staff, studentHandler.List)
	students.GET("/me", student, studentHandler.Me)
	students.GET("/:id", staff, studentHandler.Get)
	students.POST("", admin, studentHandler.Create)
	students.PUT("/:id", admin, studentHandler.Update)
	students.DELETE("/:id", admin, studentHandler.Delete)

	teachers := secured.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.GET("/:id/schedule", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), teacherHandler.Schedule)

	adminTeachers := secured.Group("/admin/teachers", admin)
	adminTeachers.POST("", teacherHandler.Create)
	adminTeachers.PUT("/:id", teacherHandler.Update)
	adminTeachers.DELETE("/:id", teacherHandler.Delete)

	secured.GET("/subscriptions/:studentId", billingHandler.Subscriptions)
	secured.POST("/payments/create-with-subscription", student, billingHandler.CreateWithSubscription)

	secured.GET("/reports/attendance", admin, reportHandler.Attendance)

	return r
}
