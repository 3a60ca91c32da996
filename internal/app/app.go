package app

import (
	"context"
	"errors"
	"net/http"
	"onlinecourse_backend/internal/config"
	"onlinecourse_backend/internal/controller"
	"onlinecourse_backend/internal/repository"
	"onlinecourse_backend/internal/service"
	"onlinecourse_backend/pkg/configwatcher"
	"onlinecourse_backend/pkg/database"
	"onlinecourse_backend/pkg/logger"
	"onlinecourse_backend/pkg/monitoring"
	"onlinecourse_backend/pkg/security"
	"onlinecourse_backend/pkg/tracing"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	tracer    *sdktrace.TracerProvider
	limiter   *security.RateLimiter
	stopWatch context.CancelFunc
}

type repositories struct {
	catalog    *repository.CatalogRepository
	people     *repository.PeopleRepository
	enrollment *repository.EnrollmentRepository
	submission *repository.SubmissionRepository
	statsCache *repository.StatsCacheRepository
}

type services struct {
	catalog     *service.CatalogService
	people      *service.PeopleService
	enrollment  *service.EnrollmentService
	grading     *service.GradingService
	aggregation *service.AggregationService
}

type controllers struct {
	catalog    *controller.CatalogController
	people     *controller.PeopleController
	enrollment *controller.EnrollmentController
	submission *controller.SubmissionController
	stats      *controller.StatsController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		catalog:    repository.NewCatalogRepository(db),
		people:     repository.NewPeopleRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		submission: repository.NewSubmissionRepository(db),
	}
	if rdb != nil {
		ttl := time.Duration(a.Config.Redis.StatsTTLSeconds) * time.Second
		repos.statsCache = repository.NewStatsCacheRepository(rdb, ttl)
	}
	return repos
}

func (a *App) initServices(repos *repositories, db *gorm.DB) *services {
	s := &services{}

	// a nil *StatsCacheRepository must not become a non-nil interface
	var cache service.StatsCache
	if repos.statsCache != nil {
		cache = repos.statsCache
	}
	s.aggregation = service.NewAggregationService(db, repos.catalog, repos.enrollment, repos.submission, cache)

	s.catalog = service.NewCatalogService(db, repos.catalog, repos.people)
	s.people = service.NewPeopleService(repos.people)
	s.enrollment = service.NewEnrollmentService(db, repos.catalog, repos.people, repos.enrollment, repos.submission, s.aggregation)
	s.grading = service.NewGradingService(db, repos.catalog, repos.enrollment, repos.submission, s.aggregation)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		catalog:    controller.NewCatalogController(s.catalog),
		people:     controller.NewPeopleController(s.people),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		submission: controller.NewSubmissionController(s.grading, s.enrollment),
		stats:      controller.NewStatsController(s.aggregation, s.enrollment),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp wires the application. When cfg.MigrateOnly is set the schema is
// migrated and the returned App has no router.
func NewApp(cfg *config.Config, configDir string) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != "release"
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		app.Redis = rdb
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, err
		}
		app.tracer = tp
	}

	// 监控初始化
	monitoring.Init()

	repos := app.initRepositories(db, app.Redis)
	services := app.initServices(repos, db)
	controllers := app.initControllers(services, db)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	return app, nil
}

func (a *App) startConfigWatcher() {
	if a.ConfigDir == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel
	go func() {
		if err := configwatcher.Watch(ctx, a.ConfigDir, configwatcher.DefaultDebounce, configwatcher.ApplyLogLevel); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	a.startConfigWatcher()

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		a.Close()
		return err
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	a.Close()
	return err
}

// Close releases background workers and connections.
func (a *App) Close() {
	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = logger.Log.Sync()
}
