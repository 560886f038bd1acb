package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/1300Sarthak/CS157a/internal/handler"
	"github.com/1300Sarthak/CS157a/internal/middleware"
	"github.com/1300Sarthak/CS157a/internal/models"
	"github.com/1300Sarthak/CS157a/internal/service"
	"github.com/1300Sarthak/CS157a/pkg/config"
	"github.com/1300Sarthak/CS157a/pkg/logger"
	corsmiddleware "github.com/1300Sarthak/CS157a/pkg/middleware/cors"
	reqidmiddleware "github.com/1300Sarthak/CS157a/pkg/middleware/requestid"
)

type routeDeps struct {
	auth        *service.AuthService
	students    *service.StudentService
	courses     *service.CourseService
	enrollments *service.EnrollmentService
	batches     *service.BatchEnrollmentService
	metrics     *service.MetricsService
	audit       middleware.AuditRecorder
	probes      map[string]handler.Probe
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(deps.metrics, deps.probes)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
		r.GET(cfg.Metrics.Path+"/summary", metricsHandler.Summary)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(deps.auth)
	studentHandler := handler.NewStudentHandler(deps.students, deps.enrollments)
	courseHandler := handler.NewCourseHandler(deps.courses, deps.enrollments)
	enrollmentHandler := handler.NewEnrollmentHandler(deps.enrollments, deps.batches)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.auth))
	secured.GET("/auth/me", authHandler.Me)

	reader := middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar, models.RoleViewer)
	registrar := middleware.RequireRoles(models.RoleAdmin, models.RoleRegistrar)
	admin := middleware.RequireRoles(models.RoleAdmin)
	audit := func(action, resource, param string) gin.HandlerFunc {
		return middleware.Audit(deps.audit, action, resource, param)
	}

	students := secured.Group("/students")
	students.GET("", reader, studentHandler.List)
	students.GET("/:email", reader, studentHandler.Get)
	students.GET("/:email/enrollments", reader, studentHandler.Enrollments)
	students.GET("/:email/transcript", reader, studentHandler.Transcript)
	students.POST("", admin, audit(models.AuditActionStudentCreate, "student", ""), studentHandler.Create)
	students.PUT("/:email/email", admin, audit(models.AuditActionStudentUpdate, "student", "email"), studentHandler.UpdateEmail)
	students.DELETE("/:email", admin, audit(models.AuditActionStudentDelete, "student", "email"), studentHandler.Delete)

	courses := secured.Group("/courses")
	courses.GET("", reader, courseHandler.List)
	courses.GET("/:code", reader, courseHandler.Get)
	courses.GET("/:code/roster", reader, courseHandler.Roster)
	courses.POST("", admin, audit(models.AuditActionCourseCreate, "course", ""), courseHandler.Create)
	courses.PUT("/:code/credits", admin, audit(models.AuditActionCourseUpdate, "course", "code"), courseHandler.UpdateCredits)
	courses.DELETE("/:code", admin, audit(models.AuditActionCourseDelete, "course", "code"), courseHandler.Delete)

	secured.GET("/instructors", reader, courseHandler.Instructors)
	secured.GET("/instructors/:id/courses", reader, courseHandler.InstructorCourses)
	secured.GET("/classrooms", reader, courseHandler.Classrooms)

	enrollments := secured.Group("/enrollments")
	enrollments.GET("", reader, enrollmentHandler.List)
	enrollments.POST("", registrar, audit(models.AuditActionEnroll, "enrollment", ""), enrollmentHandler.Create)
	enrollments.POST("/batch", registrar, audit(models.AuditActionEnrollBatch, "enrollment", ""), enrollmentHandler.Batch)
	enrollments.PUT("/grade", registrar, audit(models.AuditActionGradeUpdate, "enrollment", ""), enrollmentHandler.UpdateGrade)
	enrollments.DELETE("", registrar, audit(models.AuditActionEnrollmentDrop, "enrollment", ""), enrollmentHandler.Drop)

	return r
}
