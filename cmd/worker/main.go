package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/termene/termene/internal/alerts"
	"github.com/termene/termene/internal/app"
	"github.com/termene/termene/internal/petitions"
	"github.com/termene/termene/internal/platform/cache"
	"github.com/termene/termene/internal/platform/db"
	"github.com/termene/termene/internal/sentencing"
	"github.com/termene/termene/internal/shared"
	"github.com/termene/termene/internal/users"
	"github.com/termene/termene/jobs"
)

func main() {
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

	auditLogger := shared.NewAuditLogger(pool)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger, logger)

	sentencingRepo := sentencing.NewRepository(pool)
	sentencingService := sentencing.NewService(sentencingRepo, auditLogger, logger)

	alertsRepo := alerts.NewRepository(pool)
	alertsCache := alerts.NewCache(redisClient, cfg.CacheTTL)
	alertsService := alerts.NewService(alertsRepo, usersService, alertsCache, alerts.Thresholds{
		ImminentDays: cfg.FractionImminentDays,
		UpcomingDays: cfg.FractionUpcomingDays,
	}, logger)

	petitionsRepo := petitions.NewRepository(pool)
	petitionsService := petitions.NewService(petitionsRepo, usersService, petitions.Deadlines{
		ResponseDays: cfg.PetitionResponseDays,
		DueSoonDays:  cfg.PetitionDueSoonDays,
	}, auditLogger, logger)

	recalcJob := jobs.NewFractionRecalcJob(sentencingService, logger)
	alertScanJob := jobs.NewAlertScanJob(alertsService, logger)
	petitionScanJob := jobs.NewPetitionScanJob(petitionsService, logger)

	payload := jobs.ScanPayload{ScheduledFor: time.Now().UTC()}
	recalcTask, err := jobs.NewFractionRecalculateTask(payload)
	if err != nil {
		logger.Error("build recalculate task", slog.Any("error", err))
		os.Exit(1)
	}
	alertTask, err := jobs.NewAlertScanTask(payload)
	if err != nil {
		logger.Error("build alert scan task", slog.Any("error", err))
		os.Exit(1)
	}
	petitionTask, err := jobs.NewPetitionDueScanTask(payload)
	if err != nil {
		logger.Error("build petition scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskFractionRecalculate, Handler: recalcJob.Handle},
			{Type: jobs.TaskAlertScan, Handler: alertScanJob.Handle},
			{Type: jobs.TaskPetitionDueScan, Handler: petitionScanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: recalcTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 1 * * *", Task: alertTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: petitionTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
