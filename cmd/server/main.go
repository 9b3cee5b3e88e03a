package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/fundledger/internal/adapter/http"
	"github.com/iho/fundledger/internal/adapter/http/handler"
	"github.com/iho/fundledger/internal/adapter/http/middleware"
	"github.com/iho/fundledger/internal/adapter/rateprovider"
	postgresRepo "github.com/iho/fundledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fundledger/internal/adapter/repository/redis"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/config"
	"github.com/iho/fundledger/internal/infrastructure/logger"
	"github.com/iho/fundledger/internal/infrastructure/metrics"
	"github.com/iho/fundledger/internal/infrastructure/postgres"
	"github.com/iho/fundledger/internal/infrastructure/redis"
	"github.com/iho/fundledger/internal/returns"
	"github.com/iho/fundledger/internal/usecase"
)

const limiterCleanupInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis; an empty URL runs without the shared tier
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	var (
		sharedCache      usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		redisPinger      handler.Pinger
	)

	if redisClient != nil {
		defer redisClient.Close()
		sharedCache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("redis disabled, running without shared rate cache and idempotency keys")
	}

	types, err := config.LoadTransactionTypes(cfg.TransactionTypesFile)
	if err != nil {
		return err
	}

	providers, err := rateprovider.Chain(rateprovider.Config{
		Names:              cfg.RateProviders,
		Timeout:            cfg.RateProviderTimeout,
		RPS:                cfg.RateProviderRPS,
		ExchangeRateAPIKey: cfg.ExchangeRateAPIKey,
		CurrencyAPIKey:     cfg.CurrencyAPIKey,
	})
	if err != nil {
		return err
	}

	m := metrics.New(nil)

	// Initialize repositories
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	investmentRepo := postgresRepo.NewInvestmentRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool)
	runRepo := postgresRepo.NewImportRunRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Initialize use cases
	rateService := usecase.NewRateService(usecase.RateServiceConfig{
		Repo:      rateRepo,
		Shared:    sharedCache,
		Providers: providers,
		Metrics:   m,
		Logger:    log,
		MissTTL:   cfg.RateMissTTL,
		SharedTTL: cfg.RateCacheTTL,
	})
	normalizer := usecase.NewNormalizer(rateService, nil, cfg.DefaultCurrency, log)
	dedupUC := usecase.NewDedupUseCase(ledgerRepo)
	importUC := usecase.NewImportUseCase(usecase.ImportConfig{
		LedgerRepo:          ledgerRepo,
		InvestmentRepo:      investmentRepo,
		RunRepo:             runRepo,
		Dedup:               dedupUC,
		Normalizer:          normalizer,
		IDGen:               idGen,
		Retrier:             retrier,
		Metrics:             m,
		Logger:              log,
		Concurrency:         cfg.ImportConcurrency,
		MaxBatchSize:        cfg.ImportMaxBatch,
		SimilarityThreshold: cfg.FuzzyThreshold,
		DefaultDateFormat:   cfg.DefaultDateFormat,
	})
	transactionUC := usecase.NewTransactionUseCase(ledgerRepo, investmentRepo, dedupUC)
	analyticsUC := usecase.NewAnalyticsUseCase(ledgerRepo, solverConfig(cfg))

	// Initialize handlers
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ImportHandler:      handler.NewImportHandler(importUC, domain.DefaultFieldMapping(), types),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		ReturnsHandler:     handler.NewReturnsHandler(analyticsUC),
		RateHandler:        handler.NewRateHandler(rateService),
		HealthHandler:      handler.NewHealthHandler(pool, redisPinger),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		MetricsHandler:     promhttp.Handler(),
		Logger:             log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go cleanupLimiters(cleanupCtx, rateLimiter)

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Strs("rate_providers", cfg.RateProviders).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")

	return nil
}

func solverConfig(cfg *config.Config) returns.SolverConfig {
	solver := returns.DefaultSolverConfig()
	if cfg.XIRRMaxIterations > 0 {
		solver.MaxIterations = cfg.XIRRMaxIterations
	}

	if cfg.XIRRTolerance > 0 {
		solver.Tolerance = cfg.XIRRTolerance
	}

	return solver
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters()
		}
	}
}
