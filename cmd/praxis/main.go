package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/praxis-hq/praxis/internal/analytics"
	"github.com/praxis-hq/praxis/internal/app"
	"github.com/praxis-hq/praxis/internal/assignment"
	"github.com/praxis-hq/praxis/internal/auth"
	"github.com/praxis-hq/praxis/internal/authz"
	"github.com/praxis-hq/praxis/internal/feedback"
	"github.com/praxis-hq/praxis/internal/observability"
	"github.com/praxis-hq/praxis/internal/platform/cache"
	"github.com/praxis-hq/praxis/internal/platform/db"
	"github.com/praxis-hq/praxis/internal/session"
	"github.com/praxis-hq/praxis/internal/training"
	"github.com/praxis-hq/praxis/internal/users"
	"github.com/praxis-hq/praxis/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokenStore)
	authHandler := auth.NewHandler(logger, authService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)

	trainingRepo := training.NewRepository(dbpool)
	trainingService := training.NewService(trainingRepo)

	sessionRepo := session.NewRepository(dbpool)
	sessionService := session.NewService(sessionRepo, trainingService)

	assignmentRepo := assignment.NewRepository(dbpool)
	assignmentService := assignment.NewService(assignmentRepo, sessionService)

	feedbackRepo := feedback.NewRepository(dbpool)
	feedbackService := feedback.NewService(feedbackRepo, sessionService)

	authzService := authz.NewService(usersService, sessionService, trainingService)
	authzMiddleware := authz.Middleware{Service: authzService, Logger: logger}

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(trainingService, sessionService, analyticsCache)

	metrics := observability.NewMetrics()

	usersHandler := users.NewHandler(logger, usersService, authzMiddleware)
	trainingHandler := training.NewHandler(logger, trainingService, authzMiddleware)
	sessionHandler := session.NewHandler(logger, sessionService, authzMiddleware)
	assignmentHandler := assignment.NewHandler(logger, assignmentService, authzMiddleware)
	feedbackHandler := feedback.NewHandler(logger, feedbackService, authzMiddleware)
	analyticsHandler := analytics.NewHandler(logger, analyticsService, authzMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger, authzMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		IdentityMiddleware: auth.IdentityMiddleware(authService, logger),
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		TrainingHandler:    trainingHandler,
		SessionHandler:     sessionHandler,
		AssignmentHandler:  assignmentHandler,
		FeedbackHandler:    feedbackHandler,
		AnalyticsHandler:   analyticsHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
