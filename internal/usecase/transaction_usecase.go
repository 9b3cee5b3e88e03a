package usecase

import (
	"context"

	"github.com/iho/fundledger/internal/domain"
)

// TransactionUseCase reads the imported ledger.
type TransactionUseCase struct {
	ledgerRepo     LedgerRepository
	investmentRepo InvestmentRepository
	dedup          *DedupUseCase
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(ledgerRepo LedgerRepository, investmentRepo InvestmentRepository, dedup *DedupUseCase) *TransactionUseCase {
	if dedup == nil {
		dedup = NewDedupUseCase(ledgerRepo)
	}

	return &TransactionUseCase{
		ledgerRepo:     ledgerRepo,
		investmentRepo: investmentRepo,
		dedup:          dedup,
	}
}

// GetTransaction retrieves a ledger transaction by ID.
func (uc *TransactionUseCase) GetTransaction(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	return uc.ledgerRepo.GetByID(ctx, id)
}

// ListTransactions lists ledger transactions, newest first.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.ErrInvalidDate
	}

	return uc.ledgerRepo.List(ctx, filter)
}

// SimilarTransactions returns fuzzy near-duplicates of a ledger transaction.
func (uc *TransactionUseCase) SimilarTransactions(ctx context.Context, id string, threshold int) ([]domain.SimilarMatch, error) {
	return uc.dedup.SimilarTo(ctx, id, threshold)
}

// ListInvestments lists known investments.
func (uc *TransactionUseCase) ListInvestments(ctx context.Context, limit, offset int) ([]*domain.Investment, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.investmentRepo.List(ctx, limit, offset)
}
