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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/dance-studio-api/internal/repository"
	"github.com/noah-isme/dance-studio-api/internal/service"
	"github.com/noah-isme/dance-studio-api/migrations"
	"github.com/noah-isme/dance-studio-api/pkg/cache"
	"github.com/noah-isme/dance-studio-api/pkg/config"
	"github.com/noah-isme/dance-studio-api/pkg/database"
	"github.com/noah-isme/dance-studio-api/pkg/jobs"
	"github.com/noah-isme/dance-studio-api/pkg/logger"
)

// @title Dance Studio API
// @version 1.0.0
// @description Class scheduling, enrollment, attendance and subscriptions for a dance studio
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("studio api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database, logr)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, migrations.FS, logr); err != nil {
			return err
		}
	}

	metrics := service.NewMetricsService()
	cacheSvc, closeCache := newCache(ctx, cfg, metrics, logr)
	defer closeCache()

	app := buildApp(db, cfg, cacheSvc, metrics, logr)

	created, err := app.users.BootstrapAdmin(ctx, service.AdminBootstrap{
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
		FullName: cfg.Bootstrap.AdminFullName,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		logr.Info("bootstrap administrator created", zap.String("email", cfg.Bootstrap.AdminEmail))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeps := jobs.NewQueue("subscriptions", app.sweeper.Handle, jobs.Config{
		Workers:    cfg.Subscriptions.SweepWorkers,
		BufferSize: 1,
		MaxRetries: cfg.Subscriptions.SweepRetries,
		RetryDelay: 30 * time.Second,
		Logger:     logr,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sweeps.Start(gctx)
		defer sweeps.Stop()
		return sweeps.Every(gctx, cfg.Subscriptions.SweepInterval, service.SweepJobKind)
	})
	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newCache(ctx context.Context, cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.CacheService, func()) {
	var repo service.CacheRepository
	closeFn := func() {}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, hall cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client)
			repo = cacheRepo
			closeFn = func() {
				if err := cacheRepo.Close(); err != nil {
					logr.Warn("close redis", zap.Error(err))
				}
			}
		}
	}
	return service.NewCacheService(repo, metrics, cfg.Redis.HallCacheTTL, logr, repo != nil), closeFn
}

type app struct {
	db         *sqlx.DB
	metrics    *service.MetricsService
	auth       *service.AuthService
	users      *service.UserService
	students   *service.StudentService
	teachers   *service.TeacherService
	halls      *service.HallService
	classes    *service.ClassService
	enrollment *service.EnrollmentService
	attendance *service.AttendanceService
	billing    *service.BillingService
	reports    *service.ReportService
	sweeper    *service.SubscriptionSweeper
}

func buildApp(db *sqlx.DB, cfg *config.Config, cacheSvc *service.CacheService, metrics *service.MetricsService, logr *zap.Logger) *app {
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	hallRepo := repository.NewHallRepository(db)
	classRepo := repository.NewClassRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	return &app{
		db:      db,
		metrics: metrics,
		auth: service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		users: service.NewUserService(service.UserServiceParams{
			DB:       db,
			Users:    userRepo,
			Students: studentRepo,
			Teachers: teacherRepo,
			Admins:   adminRepo,
			Logger:   logr,
		}),
		students: service.NewStudentService(service.StudentServiceParams{
			DB:            db,
			Students:      studentRepo,
			Accounts:      userRepo,
			Classes:       classRepo,
			Attendance:    attendanceRepo,
			Subscriptions: subscriptionRepo,
			Payments:      paymentRepo,
			Validator:     validate,
			Logger:        logr,
		}),
		teachers: service.NewTeacherService(service.TeacherServiceParams{
			DB:         db,
			Teachers:   teacherRepo,
			Accounts:   userRepo,
			Classes:    classRepo,
			Attendance: attendanceRepo,
			Validator:  validate,
			Logger:     logr,
		}),
		halls: service.NewHallService(db, hallRepo, cacheSvc, validate, logr),
		classes: service.NewClassService(service.ClassServiceParams{
			DB:         db,
			Classes:    classRepo,
			Halls:      hallRepo,
			Teachers:   teacherRepo,
			Attendance: attendanceRepo,
			Validator:  validate,
			Logger:     logr,
		}),
		enrollment: service.NewEnrollmentService(service.EnrollmentServiceParams{
			DB:         db,
			Students:   studentRepo,
			Classes:    classRepo,
			Halls:      hallRepo,
			Attendance: attendanceRepo,
			Metrics:    metrics,
			Logger:     logr,
		}),
		attendance: service.NewAttendanceService(service.AttendanceServiceParams{
			DB:            db,
			Attendance:    attendanceRepo,
			Subscriptions: subscriptionRepo,
			Metrics:       metrics,
			Validator:     validate,
			Logger:        logr,
		}),
		billing: service.NewBillingService(service.BillingServiceParams{
			DB:            db,
			Payments:      paymentRepo,
			Subscriptions: subscriptionRepo,
			Audit:         userRepo,
			Validator:     validate,
			Logger:        logr,
		}),
		reports: service.NewReportService(attendanceRepo, logr),
		sweeper: service.NewSubscriptionSweeper(subscriptionRepo, metrics, logr),
	}
}
