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

	"github.com/termene/termene/internal/alerts"
	"github.com/termene/termene/internal/app"
	"github.com/termene/termene/internal/commissions"
	"github.com/termene/termene/internal/persons"
	"github.com/termene/termene/internal/petitions"
	"github.com/termene/termene/internal/platform/cache"
	"github.com/termene/termene/internal/platform/db"
	"github.com/termene/termene/internal/sentencing"
	"github.com/termene/termene/internal/shared"
	"github.com/termene/termene/internal/transfers"
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

	auditLogger := shared.NewAuditLogger(dbpool)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditLogger, logger)
	usersHandler := users.NewHandler(logger, usersService)

	personsRepo := persons.NewRepository(dbpool)
	personsService := persons.NewService(personsRepo, auditLogger, logger)
	personsHandler := persons.NewHandler(logger, personsService)

	sentencingRepo := sentencing.NewRepository(dbpool)
	sentencingService := sentencing.NewService(sentencingRepo, auditLogger, logger)
	sentencingHandler := sentencing.NewHandler(logger, sentencingService)

	alertsRepo := alerts.NewRepository(dbpool)
	alertsCache := alerts.NewCache(redisClient, cfg.CacheTTL)
	alertsService := alerts.NewService(alertsRepo, usersService, alertsCache, alerts.Thresholds{
		ImminentDays: cfg.FractionImminentDays,
		UpcomingDays: cfg.FractionUpcomingDays,
	}, logger)
	alertsHandler := alerts.NewHandler(logger, alertsService)

	petitionsRepo := petitions.NewRepository(dbpool)
	petitionsService := petitions.NewService(petitionsRepo, usersService, petitions.Deadlines{
		ResponseDays: cfg.PetitionResponseDays,
		DueSoonDays:  cfg.PetitionDueSoonDays,
	}, auditLogger, logger)
	petitionsHandler := petitions.NewHandler(logger, petitionsService)

	transfersRepo := transfers.NewRepository(dbpool)
	transfersService := transfers.NewService(transfersRepo, auditLogger, logger)
	transfersHandler := transfers.NewHandler(logger, transfersService)

	commissionsRepo := commissions.NewRepository(dbpool)
	commissionsService := commissions.NewService(commissionsRepo, auditLogger, logger)
	commissionsHandler := commissions.NewHandler(logger, commissionsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		PersonsHandler:     personsHandler,
		SentencingHandler:  sentencingHandler,
		AlertsHandler:      alertsHandler,
		PetitionsHandler:   petitionsHandler,
		TransfersHandler:   transfersHandler,
		CommissionsHandler: commissionsHandler,
		UsersHandler:       usersHandler,
		JobHandler:         jobHandler,
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
