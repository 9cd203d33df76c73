package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/trading-tournament/external/alpaca"
	"github.com/riskibarqy/trading-tournament/external/finnhub"
	"github.com/riskibarqy/trading-tournament/external/natsevents"
	"github.com/riskibarqy/trading-tournament/internal/config"
	"github.com/riskibarqy/trading-tournament/internal/domain/quote"
	"github.com/riskibarqy/trading-tournament/internal/domain/tournament"
	"github.com/riskibarqy/trading-tournament/internal/domain/uow"
	"github.com/riskibarqy/trading-tournament/internal/infrastructure/account/jwtauth"
	quoteinfra "github.com/riskibarqy/trading-tournament/internal/infrastructure/quote"
	"github.com/riskibarqy/trading-tournament/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/trading-tournament/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/trading-tournament/internal/interfaces/httpapi"
	"github.com/riskibarqy/trading-tournament/internal/interfaces/jobs"
	"github.com/riskibarqy/trading-tournament/internal/platform/cache"
	"github.com/riskibarqy/trading-tournament/internal/platform/clock"
	"github.com/riskibarqy/trading-tournament/internal/platform/id"
	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

// App owns every long-lived component of the API process.
type App struct {
	Server    *http.Server
	scheduler *jobs.Scheduler
	closers   []func(context.Context) error
	logger    *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	clk := clock.Real()

	store, err := a.openStore(cfg)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	quotes, err := newQuoteProvider(cfg, clk, logger)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	events, err := a.openEvents(ctx, cfg, logger)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	ids := id.NewUUIDGenerator()
	ledger := usecase.NewLedger(ids, clk)
	machine := usecase.NewStateMachine(ledger, clk, cfg.ExpiryAnchor)
	valuator := usecase.NewPortfolioValuator(store, quotes, usecase.ValuatorConfig{
		QuoteTimeout:   cfg.QuoteTimeout,
		MaxConcurrency: cfg.QuoteMaxConcurrency,
	}, logger.Named("valuator"))
	settlements := usecase.NewSettlementService(
		store,
		machine,
		usecase.NewSettlementEngine(ledger, logger.Named("settlement")),
		valuator,
		events,
		logger.Named("settlement"),
	)
	sweeps := usecase.NewSweepService(store, machine, settlements, events, usecase.SweepConfig{
		Workers:           cfg.SchedulerWorkers,
		TournamentTimeout: cfg.SchedulerTournamentTimeout,
	}, logger.Named("sweep"))

	handler := httpapi.NewHandler(httpapi.Services{
		Tournaments:  usecase.NewTournamentService(store, machine, ledger, ids, id.NewRandomCodeGenerator(tournament.CodeLength), events, logger.Named("tournament")),
		Trading:      usecase.NewTradingService(store, machine, valuator, quotes, ids, cfg.QuoteTimeout, logger.Named("trading")),
		Valuator:     valuator,
		Wallets:      usecase.NewWalletService(store, ledger, logger.Named("wallet")),
		Achievements: usecase.NewAchievementService(store),
		Sweeps:       sweeps,
	}, cfg.ExpiryAnchor, logger)

	verifier := jwtauth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, clk)
	router := httpapi.NewRouter(handler, verifier, logger.Named("http"), cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if cfg.SchedulerEnabled {
		a.scheduler, err = jobs.NewScheduler(sweeps, jobs.Config{
			Interval:         cfg.SchedulerInterval,
			PassTimeout:      cfg.SchedulerPassTimeout,
			StartImmediately: true,
			Clock:            clk,
		}, logger.Named("scheduler"))
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("build scheduler: %w", err)
		}
	} else {
		logger.Info("lifecycle scheduler disabled", "reason", "SCHEDULER_ENABLED=false")
	}

	return a, nil
}

// StartBackground starts the lifecycle scheduler when it is enabled.
func (a *App) StartBackground() {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
}

// Shutdown stops the HTTP server first, then the scheduler, then releases
// storage and messaging connections.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown scheduler: %w", err))
		}
	}
	if err := a.close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStore(cfg config.Config) (uow.Manager, error) {
	if cfg.StorageDriver == config.StorageMemory {
		a.logger.Warn("using in-memory storage; state is lost on restart")
		return memory.NewStore(), nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.ServiceName)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithAttributes(dbTraceAttributes(cfg.ServiceName)...),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })

	if err := pingDB(db); err != nil {
		return nil, err
	}
	a.logger.Info("postgres connected", "db_name", dbNameFromURL(dsn))
	return postgres.NewManager(db), nil
}

func pingDB(db *sqlx.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (a *App) openEvents(ctx context.Context, cfg config.Config, logger *logging.Logger) (usecase.EventPublisher, error) {
	if cfg.NATSURL == "" {
		logger.Info("event publishing disabled", "reason", "NATS_URL empty")
		return usecase.NewNoopEventPublisher(), nil
	}

	publisher, err := natsevents.Connect(ctx, natsevents.Config{
		URL:            cfg.NATSURL,
		PublishTimeout: cfg.NATSPublishTimeout,
		Logger:         logger.Named("nats"),
	})
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error {
		publisher.Close()
		return nil
	})
	return publisher, nil
}

func newQuoteProvider(cfg config.Config, clk clock.Clock, logger *logging.Logger) (quote.Provider, error) {
	var next quote.Provider
	switch cfg.QuoteProvider {
	case config.QuoteProviderFinnhub:
		next = finnhub.NewClient(finnhub.ClientConfig{
			BaseURL:        cfg.FinnhubBaseURL,
			Token:          cfg.FinnhubToken,
			Timeout:        cfg.FinnhubTimeout,
			MaxRetries:     cfg.FinnhubMaxRetries,
			Logger:         logger.Named("finnhub"),
			Clock:          clk,
			CircuitBreaker: cfg.QuoteCircuit,
		})
	case config.QuoteProviderAlpaca:
		next = alpaca.NewClient(alpaca.ClientConfig{
			APIKey:         cfg.AlpacaAPIKey,
			APISecret:      cfg.AlpacaAPISecret,
			DataURL:        cfg.AlpacaDataURL,
			Timeout:        cfg.QuoteTimeout,
			Logger:         logger.Named("alpaca"),
			Clock:          clk,
			CircuitBreaker: cfg.QuoteCircuit,
		})
	default:
		prices, err := quoteinfra.ParseStaticPrices(cfg.QuoteStaticPrices)
		if err != nil {
			return nil, fmt.Errorf("parse QUOTE_STATIC_PRICES: %w", err)
		}
		logger.Info("using static quote provider", "symbols", len(prices))
		next = quoteinfra.NewStaticProvider(prices, clk)
	}

	return quoteinfra.NewCachedProvider(next, cache.NewStore[quote.Quote](cfg.QuoteCacheTTL, clk)), nil
}
