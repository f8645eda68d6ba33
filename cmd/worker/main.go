package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/praxis-hq/praxis/internal/analytics"
	"github.com/praxis-hq/praxis/internal/app"
	"github.com/praxis-hq/praxis/internal/feedback"
	jobmetrics "github.com/praxis-hq/praxis/internal/jobs"
	"github.com/praxis-hq/praxis/internal/platform/cache"
	"github.com/praxis-hq/praxis/internal/platform/db"
	"github.com/praxis-hq/praxis/internal/session"
	"github.com/praxis-hq/praxis/internal/training"
	"github.com/praxis-hq/praxis/internal/users"
	"github.com/praxis-hq/praxis/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	usersService := users.NewService(users.NewRepository(pool))
	trainingService := training.NewService(training.NewRepository(pool))
	sessionService := session.NewService(session.NewRepository(pool), trainingService)
	feedbackService := feedback.NewService(feedback.NewRepository(pool), sessionService)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(trainingService, sessionService, analyticsCache)

	metrics := jobmetrics.NewMetrics(nil)

	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	mailJob := &jobs.MailJob{
		Mailer:  &jobs.SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.SMTPFrom},
		Logger:  logger,
		Metrics: metrics,
	}
	reminderJob := &jobs.SessionReminderJob{
		Sessions: sessionService,
		Users:    usersService,
		Client:   client,
		Logger:   logger,
		Metrics:  metrics,
	}
	digestJob := jobs.NewFeedbackDigestJob(sessionService, feedbackService, usersService, client, logger, metrics)
	refreshJob := &jobs.AnalyticsRefreshJob{
		Cache:     analyticsCache,
		Analytics: analyticsService,
		Trainings: trainingService,
		Logger:    logger,
		Metrics:   metrics,
	}

	now := time.Now().UTC()
	reminderTask, err := jobs.NewSessionReminderTask(now)
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	digestTask, err := jobs.NewFeedbackDigestTask(now)
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}
	refreshTask, err := jobs.NewAnalyticsRefreshTask(now)
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskSessionReminder, Handler: reminderJob.Handle},
			{Type: jobs.TaskFeedbackDigest, Handler: digestJob.Handle},
			{Type: jobs.TaskAnalyticsRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 7 * * *", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 6 * * *", Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 1 * * *", Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
