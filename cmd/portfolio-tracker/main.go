package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/cache"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/config"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/handler"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/holdings"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/logger"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/provider"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/scheduler"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/server"
	"github.com/amanrathour14/Dynamic-Portfolio-Dashboard/internal/service"
)

const _cfgFilePath = "./configs/config.yaml"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("can't detect .env file")
	}

	cfg, err := config.Load(_cfgFilePath)
	if err != nil {
		log.Fatalf("%s: can't load config", err)
	}

	zapLogger, loggerSync, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%s: can't init logger", err)
	}
	defer loggerSync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// no cache backing means every request hammers the providers, so refuse to start
	store, err := cache.NewRedisStore(ctx, cfg.Redis, zapLogger.With("component", "cache"))
	if err != nil {
		zapLogger.Fatalf("%s: can't init cache store", err)
	}
	defer store.Close()

	repo := newRepository(cfg, zapLogger)

	svc := service.NewPortfolioService(
		repo,
		store,
		provider.NewYahooQuoteService(cfg.Providers.QuoteAPIURL, zapLogger.With("component", "quote-provider")),
		provider.NewGoogleFinanceService(cfg.Providers.FinancePagesURL, zapLogger.With("component", "metrics-provider")),
		cfg,
		zapLogger,
	)

	sched := scheduler.New(zapLogger.With("component", "scheduler"))
	if err := sched.AddJob(ctx, "quotes", cfg.Warming.QuotesSpec, svc.WarmQuotes); err != nil {
		zapLogger.Fatalf("%s: can't schedule quote warming", err)
	}
	if err := sched.AddJob(ctx, "metrics", cfg.Warming.MetricsSpec, svc.WarmMetrics); err != nil {
		zapLogger.Fatalf("%s: can't schedule metrics warming", err)
	}
	go sched.Run(ctx)

	s := server.NewHTTPServer(ctx, cfg.Port, handler.New(svc, zapLogger).Router())
	zapLogger.Infof("server is running on port %s", cfg.Port)
	if err := s.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zapLogger.Fatalf("%s: server stopped", err)
	}
}

func newRepository(cfg config.Config, zapLogger logger.Logger) holdings.Repository {
	if cfg.Storage == config.Postgres {
		repo, err := holdings.NewPostgresRepository(cfg.Postgres)
		if err != nil {
			zapLogger.Fatalf("%s: can't init postgres holdings repository", err)
		}
		return repo
	}

	seed := holdings.DefaultHoldings()
	if cfg.SeedFile != "" {
		// workbook seeding is best-effort, fall back to the sample portfolio
		loaded, err := holdings.LoadWorkbook(cfg.SeedFile)
		switch {
		case err != nil:
			zapLogger.Warnf("%s: workbook seeding skipped", err)
		case len(loaded) > 0:
			zapLogger.Infof("seeded %d holdings from %s", len(loaded), cfg.SeedFile)
			seed = loaded
		}
	}
	return holdings.NewMemoryRepository(seed)
}
