package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type importServiceStub struct {
	importFn  func(ctx context.Context, input usecase.ImportRowsInput) (*domain.ImportSummary, error)
	batchFn   func(ctx context.Context, input usecase.ImportBatchInput) (*domain.ImportSummary, error)
	listRunFn func(ctx context.Context, limit, offset int) ([]*domain.ImportRun, error)
	getRunFn  func(ctx context.Context, id string) (*domain.ImportRun, error)
}

func (s *importServiceStub) ImportRows(ctx context.Context, input usecase.ImportRowsInput) (*domain.ImportSummary, error) {
	return s.importFn(ctx, input)
}

func (s *importServiceStub) ImportBatch(ctx context.Context, input usecase.ImportBatchInput) (*domain.ImportSummary, error) {
	return s.batchFn(ctx, input)
}

func (s *importServiceStub) ListRuns(ctx context.Context, limit, offset int) ([]*domain.ImportRun, error) {
	return s.listRunFn(ctx, limit, offset)
}

func (s *importServiceStub) GetRun(ctx context.Context, id string) (*domain.ImportRun, error) {
	return s.getRunFn(ctx, id)
}

type transactionServiceStub struct {
	getFn         func(ctx context.Context, id string) (*domain.LedgerTransaction, error)
	listFn        func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error)
	similarFn     func(ctx context.Context, id string, threshold int) ([]domain.SimilarMatch, error)
	investmentsFn func(ctx context.Context, limit, offset int) ([]*domain.Investment, error)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	return s.getFn(ctx, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error) {
	return s.listFn(ctx, filter)
}

func (s *transactionServiceStub) SimilarTransactions(ctx context.Context, id string, threshold int) ([]domain.SimilarMatch, error) {
	return s.similarFn(ctx, id, threshold)
}

func (s *transactionServiceStub) ListInvestments(ctx context.Context, limit, offset int) ([]*domain.Investment, error) {
	return s.investmentsFn(ctx, limit, offset)
}

type rateServiceStub struct {
	rateFn func(ctx context.Context, date time.Time, from, to string) (decimal.NullDecimal, error)
	getFn  func(ctx context.Context, date time.Time, from, to string) (*domain.ExchangeRate, error)
	setFn  func(ctx context.Context, date time.Time, from, to string, rate decimal.Decimal) (*domain.ExchangeRate, error)
}

func (s *rateServiceStub) Rate(ctx context.Context, date time.Time, from, to string) (decimal.NullDecimal, error) {
	return s.rateFn(ctx, date, from, to)
}

func (s *rateServiceStub) GetRate(ctx context.Context, date time.Time, from, to string) (*domain.ExchangeRate, error) {
	return s.getFn(ctx, date, from, to)
}

func (s *rateServiceStub) SetManualRate(ctx context.Context, date time.Time, from, to string, rate decimal.Decimal) (*domain.ExchangeRate, error) {
	return s.setFn(ctx, date, from, to, rate)
}

type analyticsServiceStub struct {
	investmentFn func(ctx context.Context, input usecase.ReturnsInput) (*domain.ReturnMetrics, error)
	portfolioFn  func(ctx context.Context, input usecase.ReturnsInput) (*domain.ReturnMetrics, error)
}

func (s *analyticsServiceStub) InvestmentReturns(ctx context.Context, input usecase.ReturnsInput) (*domain.ReturnMetrics, error) {
	return s.investmentFn(ctx, input)
}

func (s *analyticsServiceStub) PortfolioReturns(ctx context.Context, input usecase.ReturnsInput) (*domain.ReturnMetrics, error) {
	return s.portfolioFn(ctx, input)
}
