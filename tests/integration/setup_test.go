package integration

import (
	"github.com/rs/zerolog"

	"github.com/iho/fundledger/internal/adapter/repository/postgres"
	"github.com/iho/fundledger/internal/returns"
	"github.com/iho/fundledger/internal/usecase"
	"github.com/iho/fundledger/tests/testutil"
)

type services struct {
	imports      *usecase.ImportUseCase
	transactions *usecase.TransactionUseCase
	analytics    *usecase.AnalyticsUseCase
	rates        *usecase.RateService
	ledgerRepo   *postgres.LedgerRepository
	rateRepo     *postgres.RateRepository
}

func newServices(testDB *testutil.TestDB, shared usecase.Cache) *services {
	pool := testDB.Pool
	ledgerRepo := postgres.NewLedgerRepository(pool)
	investmentRepo := postgres.NewInvestmentRepository(pool)
	rateRepo := postgres.NewRateRepository(pool)
	logger := zerolog.Nop()

	rates := usecase.NewRateService(usecase.RateServiceConfig{
		Repo:   rateRepo,
		Shared: shared,
		Logger: logger,
	})
	dedup := usecase.NewDedupUseCase(ledgerRepo)

	return &services{
		imports: usecase.NewImportUseCase(usecase.ImportConfig{
			LedgerRepo:     ledgerRepo,
			InvestmentRepo: investmentRepo,
			RunRepo:        postgres.NewImportRunRepository(pool),
			Dedup:          dedup,
			Normalizer:     usecase.NewNormalizer(rates, nil, "ILS", logger),
			IDGen:          postgres.NewULIDGenerator(),
			Retrier:        postgres.NewRetrier(logger),
			Logger:         logger,
		}),
		transactions: usecase.NewTransactionUseCase(ledgerRepo, investmentRepo, dedup),
		analytics:    usecase.NewAnalyticsUseCase(ledgerRepo, returns.DefaultSolverConfig()),
		rates:        rates,
		ledgerRepo:   ledgerRepo,
		rateRepo:     rateRepo,
	}
}
