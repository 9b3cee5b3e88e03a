package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/returns"
)

// AnalyticsUseCase computes return metrics from the ledger in USD.
type AnalyticsUseCase struct {
	ledgerRepo LedgerRepository
	solver     returns.SolverConfig
	now        func() time.Time
}

// NewAnalyticsUseCase creates a new AnalyticsUseCase.
func NewAnalyticsUseCase(ledgerRepo LedgerRepository, solver returns.SolverConfig) *AnalyticsUseCase {
	if solver.MaxIterations <= 0 {
		solver.MaxIterations = returns.DefaultMaxIterations
	}

	if solver.Tolerance <= 0 {
		solver.Tolerance = returns.DefaultTolerance
	}

	if solver.Guess == 0 {
		solver.Guess = returns.DefaultGuess
	}

	return &AnalyticsUseCase{
		ledgerRepo: ledgerRepo,
		solver:     solver,
		now:        time.Now,
	}
}

// ReturnsInput represents input for a returns computation.
type ReturnsInput struct {
	Identifier string
	// Residual is the current value of the position; nil assumes cost.
	Residual *decimal.Decimal
	// AsOf dates the synthetic residual flow; nil means today.
	AsOf *time.Time
}

// InvestmentReturns computes metrics for a single investment.
func (uc *AnalyticsUseCase) InvestmentReturns(ctx context.Context, input ReturnsInput) (*domain.ReturnMetrics, error) {
	if err := domain.ValidateIdentifier(input.Identifier); err != nil {
		return nil, err
	}

	return uc.compute(ctx, input)
}

// PortfolioReturns computes metrics across every investment in the ledger.
func (uc *AnalyticsUseCase) PortfolioReturns(ctx context.Context, input ReturnsInput) (*domain.ReturnMetrics, error) {
	input.Identifier = ""
	return uc.compute(ctx, input)
}

func (uc *AnalyticsUseCase) compute(ctx context.Context, input ReturnsInput) (*domain.ReturnMetrics, error) {
	rows, err := uc.ledgerRepo.ListForAnalytics(ctx, input.Identifier)
	if err != nil {
		return nil, err
	}

	flows, excluded := CashFlows(rows)
	if len(flows) == 0 {
		return nil, domain.ErrNoCashFlows
	}

	asOf := uc.now().UTC()
	if input.AsOf != nil {
		asOf = input.AsOf.UTC()
	}

	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	called, distributions := returns.Totals(flows)
	m := returns.ComputeMultiples(called, distributions, input.Residual)

	return &domain.ReturnMetrics{
		AsOf:            asOf,
		Identifier:      input.Identifier,
		Called:          called,
		Distributions:   distributions,
		Residual:        m.Residual,
		ResidualAssumed: m.ResidualAssumed,
		XIRR:            returns.XIRR(returns.WithResidual(flows, m.Residual, asOf), uc.solver),
		MOIC:            m.MOIC,
		DPI:             m.DPI,
		RVPI:            m.RVPI,
		TVPI:            m.TVPI,
		FlowCount:       len(flows),
		ExcludedCount:   excluded,
	}, nil
}

// CashFlows builds the USD cash-flow series of ledger rows. Rows without a
// date or a USD amount are left out and counted.
func CashFlows(rows []*domain.LedgerTransaction) ([]domain.CashFlow, int) {
	flows := make([]domain.CashFlow, 0, len(rows))
	excluded := 0

	for _, r := range rows {
		if r.Date == nil || !r.AmountUSD.Valid {
			excluded++
			continue
		}

		flows = append(flows, domain.CashFlow{Date: *r.Date, Amount: r.AmountUSD.Decimal})
	}

	return flows, excluded
}
