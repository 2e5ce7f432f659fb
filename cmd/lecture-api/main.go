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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/yoga-lecture-api/api/swagger"
	"github.com/noah-isme/yoga-lecture-api/internal/handler"
	"github.com/noah-isme/yoga-lecture-api/internal/middleware"
	"github.com/noah-isme/yoga-lecture-api/internal/models"
	"github.com/noah-isme/yoga-lecture-api/internal/repository"
	"github.com/noah-isme/yoga-lecture-api/internal/service"
	"github.com/noah-isme/yoga-lecture-api/pkg/broker"
	"github.com/noah-isme/yoga-lecture-api/pkg/cache"
	"github.com/noah-isme/yoga-lecture-api/pkg/config"
	"github.com/noah-isme/yoga-lecture-api/pkg/database"
	"github.com/noah-isme/yoga-lecture-api/pkg/jobs"
	"github.com/noah-isme/yoga-lecture-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/yoga-lecture-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/yoga-lecture-api/pkg/middleware/requestid"
	"github.com/noah-isme/yoga-lecture-api/pkg/timeutil"
)

// @title Yoga Live Lecture API
// @version 1.0.0
// @description Recurring live lecture scheduling with enrollment redistribution
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

type publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	conv, err := timeutil.NewConverter(cfg.Lecture.TimeZone)
	if err != nil {
		logr.Fatal("invalid lecture time zone", zap.String("zone", cfg.Lecture.TimeZone), zap.Error(err))
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var (
		redisClient *redis.Client
		cacheRepo   service.CacheRepository
	)
	if cfg.Lecture.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, lecture cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, "yoga")
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Lecture.CacheTTL, logr, cfg.Lecture.CacheEnabled)

	lectureRepo := repository.NewLectureRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	var pub publisher = broker.NewLogPublisher(logr)
	if cfg.RabbitMQ.Enabled {
		pub = broker.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logr)
	}
	defer pub.Close() //nolint:errcheck

	var notifier service.NotificationSink = service.NoopNotificationSink{}
	var queue *jobs.Queue
	if cfg.Notifications.Enabled {
		notifications := service.NewNotificationService(pub, metrics, logr)
		queue = jobs.NewQueue("lecture-notifications", notifications.Handle, jobs.QueueConfig{
			Workers:    cfg.Notifications.Workers,
			MaxRetries: cfg.Notifications.Retries,
			RetryDelay: cfg.Notifications.RetryDelay,
			Logger:     logr,
			OnDrop:     notifications.Dropped,
		})
		queue.Start(context.Background())
		notifications.AttachQueue(queue)
		notifier = notifications
	}

	lectureSvc := service.NewLiveLectureService(lectureRepo, enrollmentRepo, userRepo, db, conv, notifier, cacheSvc, metrics, validate, logr, service.LiveLectureConfig{
		TxMaxRetries: cfg.Lecture.TxMaxRetries,
		CacheTTL:     cfg.Lecture.CacheTTL,
	})
	enrollmentSvc := service.NewEnrollmentService(lectureRepo, enrollmentRepo, db, cacheSvc, metrics, cfg.Lecture.TxMaxRetries, logr)
	homeSvc := service.NewHomeService(lectureRepo, userRepo, conv, cfg.Lecture.DefaultPageSize, validate, logr)
	exportSvc := service.NewExportService(lectureRepo, enrollmentRepo, conv, logr)
	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, logr)

	var completion *service.CompletionService
	if cfg.Completion.Enabled {
		completion = service.NewCompletionService(enrollmentRepo, cfg.Completion.Schedule, metrics, logr)
		if err := completion.Start(); err != nil {
			logr.Fatal("failed to start completion sweep", zap.Error(err))
		}
	}

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	lectureHandler := handler.NewLiveLectureHandler(lectureSvc, exportSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	homeHandler := handler.NewHomeHandler(homeSvc)
	authHandler := handler.NewAuthHandler(userRepo)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	teacher := middleware.RequireRoles(models.RoleTeacher)
	student := middleware.RequireRoles(models.RoleStudent)

	api.GET("/auth/me", authHandler.Me)
	api.GET("/home", homeHandler.Home)
	api.GET("/history", homeHandler.History)

	lectures := api.Group("/live-lectures")
	lectures.POST("", teacher, lectureHandler.Create)
	lectures.GET("", teacher, lectureHandler.List)
	lectures.GET("/:id", lectureHandler.Get)
	lectures.PUT("/:id", teacher, lectureHandler.Update)
	lectures.DELETE("/:id", teacher, lectureHandler.Delete)
	lectures.PUT("/:id/on-air", teacher, lectureHandler.SetOnAir)
	lectures.GET("/:id/schedules/export", teacher, lectureHandler.Export)

	schedules := api.Group("/schedules")
	schedules.POST("/:id/enrollments", student, enrollmentHandler.Enroll)
	schedules.DELETE("/:id/enrollments", student, enrollmentHandler.Unenroll)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if completion != nil {
		completion.Stop(shutdownCtx)
	}
	if queue != nil {
		queue.Stop()
	}
}
