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

	_ "github.com/1300Sarthak/CS157a/api/swagger"
	"github.com/1300Sarthak/CS157a/internal/handler"
	"github.com/1300Sarthak/CS157a/internal/repository"
	"github.com/1300Sarthak/CS157a/internal/service"
	"github.com/1300Sarthak/CS157a/pkg/cache"
	"github.com/1300Sarthak/CS157a/pkg/config"
	"github.com/1300Sarthak/CS157a/pkg/database"
	"github.com/1300Sarthak/CS157a/pkg/logger"
	"github.com/1300Sarthak/CS157a/pkg/validation"
)

// @title Course Registration API
// @version 1.0.0
// @description Student, course and enrollment records with atomic batch enrollment
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validation.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)

	openSession := func(ctx context.Context) (service.EnrollmentSession, error) {
		session, err := repository.OpenSession(ctx, db, repository.WithQueryObserver(metricsSvc.ObserveDBQuery))
		if err != nil {
			return nil, err
		}
		return session, nil
	}

	services := routeDeps{
		auth: service.NewAuthService(operatorRepo, validate, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		students:    service.NewStudentService(studentRepo, cacheSvc, validate, logr),
		courses:     service.NewCourseService(courseRepo, cacheSvc, validate, logr),
		enrollments: service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, cacheSvc, validate, logr),
		batches:     service.NewBatchEnrollmentService(openSession, cacheSvc, metricsSvc, cfg.Enrollment.MaxBatchSize, logr),
		metrics:     metricsSvc,
		audit:       operatorRepo,
		probes: map[string]handler.Probe{
			"postgres": db.PingContext,
			"redis":    cacheRepo.Ping,
		},
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(cfg, logr, services)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
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
