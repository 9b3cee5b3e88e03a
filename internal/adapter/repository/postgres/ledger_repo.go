package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
	txm     *TxManager
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepositoryWithPool(pool)
}

func newLedgerRepositoryWithPool(pool pgxPool) *LedgerRepository {
	return &LedgerRepository{
		queries: generated.New(pool),
		txm:     newTxManagerWithPool(pool),
	}
}

// InsertIfAbsent inserts tx unless its fingerprint is already stored. The
// conflicting row is resolved in the same transaction.
func (r *LedgerRepository) InsertIfAbsent(ctx context.Context, tx *domain.LedgerTransaction) (bool, string, error) {
	params, err := toInsertParams(tx)
	if err != nil {
		return false, "", err
	}

	var (
		inserted   bool
		existingID string
	)

	err = r.txm.WithTx(ctx, func(q *generated.Queries) error {
		_, err := q.InsertTransaction(ctx, params)
		if err == nil {
			inserted = true
			return nil
		}

		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		existing, err := q.GetTransactionByFingerprint(ctx, params.Fingerprint)
		if err != nil {
			return fmt.Errorf("failed to resolve fingerprint conflict: %w", err)
		}

		existingID = existing.ID

		return nil
	})
	if err != nil {
		return false, "", err
	}

	return inserted, existingID, nil
}

// GetByID retrieves a transaction by ID.
func (r *LedgerRepository) GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// GetByFingerprint retrieves a transaction by its dedup fingerprint.
func (r *LedgerRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.LedgerTransaction, error) {
	row, err := r.queries.GetTransactionByFingerprint(ctx, stringToPgText(fingerprint))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return rowToTransaction(row), nil
}

// FindCandidates lists transactions of one investment dated within [from, to].
func (r *LedgerRepository) FindCandidates(ctx context.Context, identifier string, from, to time.Time) ([]*domain.LedgerTransaction, error) {
	rows, err := r.queries.FindCandidateTransactions(ctx, generated.FindCandidateTransactionsParams{
		InvestmentIdentifier: stringToPgText(identifier),
		FromDate:             timeToPgDate(from),
		ToDate:               timeToPgDate(to),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// List lists transactions, newest first.
func (r *LedgerRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error) {
	rows, err := r.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		FromDate:             timePtrToPgDate(filter.From),
		ToDate:               timePtrToPgDate(filter.To),
		InvestmentIdentifier: filter.InvestmentIdentifier,
		Limit:                int32(filter.Limit),
		Offset:               int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListForAnalytics lists every transaction of an investment in date order.
// An empty identifier lists the whole ledger.
func (r *LedgerRepository) ListForAnalytics(ctx context.Context, identifier string) ([]*domain.LedgerTransaction, error) {
	rows, err := r.queries.ListAnalyticsTransactions(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

func toInsertParams(tx *domain.LedgerTransaction) (generated.InsertTransactionParams, error) {
	sourceRow := tx.SourceRow
	if sourceRow == nil {
		sourceRow = map[string]any{}
	}

	raw, err := json.Marshal(sourceRow)
	if err != nil {
		return generated.InsertTransactionParams{}, fmt.Errorf("failed to encode source row: %w", err)
	}

	issues := make([]string, 0, len(tx.Issues))
	for _, i := range tx.Issues {
		issues = append(issues, string(i))
	}

	return generated.InsertTransactionParams{
		ID:                   tx.ID,
		Fingerprint:          stringPtrToPgText(tx.Fingerprint),
		TransactionDate:      timePtrToPgDate(tx.Date),
		AmountOriginal:       nullDecimalToNumeric(tx.AmountOriginal),
		AmountNormalized:     nullDecimalToNumeric(tx.AmountNormalized),
		OriginalCurrency:     tx.OriginalCurrency,
		AmountUsd:            nullDecimalToNumeric(tx.AmountUSD),
		AmountIls:            nullDecimalToNumeric(tx.AmountILS),
		ExchangeRateToIls:    nullDecimalToNumeric(tx.ExchangeRateToILS),
		TransactionType:      tx.TransactionType,
		Category:             tx.Category,
		Direction:            int16(tx.Direction),
		Counterparty:         tx.Counterparty,
		InvestmentIdentifier: stringToPgText(tx.InvestmentIdentifier),
		SourceRow:            raw,
		Issues:               issues,
		NeedsReview:          tx.NeedsReview,
		ImportRunID:          tx.ImportRunID,
		CreatedAt:            timeToPgTimestamptz(tx.CreatedAt),
		UpdatedAt:            timeToPgTimestamptz(tx.UpdatedAt),
	}, nil
}

func rowToTransaction(row generated.Transaction) *domain.LedgerTransaction {
	var sourceRow map[string]any
	if len(row.SourceRow) > 0 {
		_ = json.Unmarshal(row.SourceRow, &sourceRow)
	}

	var issues []domain.Issue
	for _, i := range row.Issues {
		issues = append(issues, domain.Issue(i))
	}

	return &domain.LedgerTransaction{
		NormalizedTransaction: domain.NormalizedTransaction{
			Date:                 pgDateToTimePtr(row.TransactionDate),
			AmountOriginal:       numericToNullDecimal(row.AmountOriginal),
			AmountNormalized:     numericToNullDecimal(row.AmountNormalized),
			OriginalCurrency:     row.OriginalCurrency,
			AmountUSD:            numericToNullDecimal(row.AmountUsd),
			AmountILS:            numericToNullDecimal(row.AmountIls),
			ExchangeRateToILS:    numericToNullDecimal(row.ExchangeRateToIls),
			TransactionType:      row.TransactionType,
			Category:             row.Category,
			Direction:            domain.Direction(row.Direction),
			Counterparty:         row.Counterparty,
			InvestmentIdentifier: row.InvestmentIdentifier.String,
			SourceRow:            sourceRow,
			Issues:               issues,
		},
		ID:          row.ID,
		Fingerprint: pgTextToStringPtr(row.Fingerprint),
		ImportRunID: row.ImportRunID,
		NeedsReview: row.NeedsReview,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func rowsToTransactions(rows []generated.Transaction) []*domain.LedgerTransaction {
	out := make([]*domain.LedgerTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTransaction(row))
	}

	return out
}
