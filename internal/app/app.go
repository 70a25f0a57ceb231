package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rpillai/dealwatch/internal/config"
	"github.com/rpillai/dealwatch/internal/deals"
	"github.com/rpillai/dealwatch/internal/delivery/rest"
	"github.com/rpillai/dealwatch/internal/infra/db"
	"github.com/rpillai/dealwatch/internal/infra/epic"
	"github.com/rpillai/dealwatch/internal/infra/log"
	"github.com/rpillai/dealwatch/internal/infra/mail"
	"github.com/rpillai/dealwatch/internal/infra/steam"
	"github.com/rpillai/dealwatch/internal/metrics"
	"github.com/rpillai/dealwatch/internal/scheduler"
	"github.com/rpillai/dealwatch/internal/usecase"
	"go.uber.org/zap"
)

type App struct {
	server    *rest.Server
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
	cleanupFn func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	userRepo := db.NewUserRepository(dbConn)
	gameRepo := db.NewGameRepository(dbConn)
	alertRepo := db.NewAlertRepository(dbConn)
	subRepo := db.NewSubscriptionRepository(dbConn)
	freeGameRepo := db.NewFreeGameAlertRepository(dbConn)

	corrections, err := steam.LoadCorrections(cfg.CorrectionsFile)
	if err != nil {
		return nil, err
	}
	steamClient := steam.NewClient(cfg.SteamStoreBaseURL, cfg.SteamCountryCode, cfg.SteamTimeout, corrections, logger.Named("steam"))
	epicClient := epic.NewClient(cfg.EpicFreeGamesURLs, cfg.EpicTimeout, logger.Named("epic"))
	sender := mail.NewResendSender(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.SenderEmail, cfg.EmailTimeout, logger.Named("mail"))

	dealsCache, err := deals.New(steamClient, deals.Config{
		MinDiscountPercent: cfg.MinDiscountPercent,
		TargetSize:         cfg.DealsTargetSize,
		StaleCeiling:       cfg.CacheStaleCeiling,
		CacheFile:          cfg.DealsCacheFile,
		WatchlistFile:      cfg.WatchlistFile,
	}, logger.Named("deals"), m)
	if err != nil {
		return nil, err
	}

	userUC := usecase.NewUserUsecase(userRepo)
	gameUC := usecase.NewGameUsecase(steamClient, gameRepo, logger.Named("games"))
	alertUC := usecase.NewAlertUsecase(userRepo, alertRepo, gameRepo, steamClient)
	digestUC := usecase.NewDigestUsecase(userRepo, subRepo, dealsCache, sender, logger.Named("digest"), m)
	evaluator := usecase.NewEvaluator(alertRepo, gameRepo, steamClient, sender, cfg.SweepDelay, logger.Named("evaluator"), m)
	freeGamesUC := usecase.NewFreeGamesUsecase(epicClient, freeGameRepo, subRepo, sender, logger.Named("freegames"), m)

	sched := scheduler.New(logger.Named("scheduler"), m)
	digestSpec, err := cfg.DigestCronSpec()
	if err != nil {
		return nil, err
	}
	jobs := []struct {
		spec       string
		job        scheduler.Job
		runAtStart bool
	}{
		{fmt.Sprintf("@every %dh", cfg.PriceCheckIntervalHours), scheduler.NewJob("price_sweep", evaluator.EvaluateAll), false},
		{fmt.Sprintf("@every %dh", cfg.DealsRefreshIntervalHours), scheduler.NewJob("deals_refresh", dealsCache.Refresh), true},
		{fmt.Sprintf("@every %dh", cfg.FreeGamesIntervalHours), scheduler.NewJob("free_games_check", freeGamesUC.Run), true},
		{digestSpec, scheduler.NewJob("daily_digest", digestUC.RunDaily), false},
	}
	for _, entry := range jobs {
		if err := sched.Add(entry.spec, entry.job, entry.runAtStart); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", entry.job.Name(), err)
		}
	}

	handlers := rest.NewHandlers(userUC, gameUC, alertUC, digestUC, dealsCache, logger.Named("http"))
	router := rest.NewRouter(handlers, logger.Named("http"), registry)
	server := rest.NewServer(cfg.HTTPAddr, router, cfg.HTTPShutdownTimeout, logger)

	cleanup := func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return &App{server: server, scheduler: sched, logger: logger, cleanupFn: cleanup}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("dealwatch service starting")
	a.scheduler.Start(ctx)

	a.logger.Info("dealwatch service started")
	return a.server.Start(ctx)
}

func (a *App) Shutdown() {
	a.logger.Info("dealwatch service shutting down")
	a.scheduler.Stop()
	if a.cleanupFn != nil {
		if err := a.cleanupFn(); err != nil {
			a.logger.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
