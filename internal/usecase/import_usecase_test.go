package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
	"github.com/iho/fundledger/internal/usecase/mocks"
)

type importFixture struct {
	ledger      *mocks.FakeLedgerRepository
	investments *mocks.FakeInvestmentRepository
	runs        *mocks.FakeImportRunRepository
	uc          *usecase.ImportUseCase
}

var fixtureSeq atomic.Int64

func newImportFixture(maxBatch int) *importFixture {
	prefix := fmt.Sprintf("f%d-tx-", fixtureSeq.Add(1))

	f := &importFixture{
		ledger:      mocks.NewFakeLedgerRepository(),
		investments: mocks.NewFakeInvestmentRepository(),
		runs:        mocks.NewFakeImportRunRepository(),
	}

	rates := &mocks.FakeRateLookup{Rates: map[string]decimal.Decimal{"ILS": decimal.RequireFromString("0.25")}}

	f.uc = usecase.NewImportUseCase(usecase.ImportConfig{
		LedgerRepo:     f.ledger,
		InvestmentRepo: f.investments,
		RunRepo:        f.runs,
		Normalizer:     usecase.NewNormalizer(rates, nil, "", zerolog.Nop()),
		IDGen:          mocks.NewFakeIDGenerator(prefix),
		Logger:         zerolog.Nop(),
		MaxBatchSize:   maxBatch,
	})

	return f
}

func validBatch(n int) []*domain.NormalizedTransaction {
	txs := make([]*domain.NormalizedTransaction, n)
	for i := range txs {
		txs[i] = normalized(fmt.Sprintf("2024-01-%02d", i+1), fmt.Sprintf("-%d", 1000*(i+1)), "Fund A")
	}

	return txs
}

func statuses(summary *domain.ImportSummary) []domain.OutcomeStatus {
	out := make([]domain.OutcomeStatus, len(summary.Outcomes))
	for i, o := range summary.Outcomes {
		out[i] = o.Status
	}

	return out
}

func TestImportUseCase_IdempotentReimport(t *testing.T) {
	f := newImportFixture(0)
	ctx := context.Background()

	first, err := f.uc.ImportBatch(ctx, usecase.ImportBatchInput{Transactions: validBatch(5), Options: domain.DefaultImportOptions()})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Imported)
	assert.Equal(t, 0, first.Skipped)
	assert.Len(t, first.IDs, 5)
	assert.NotEmpty(t, first.RunID)

	second, err := f.uc.ImportBatch(ctx, usecase.ImportBatchInput{Transactions: validBatch(5), Options: domain.DefaultImportOptions()})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 5, second.Skipped)
	assert.Equal(t, first.IDs[0], second.Outcomes[0].DuplicateRef)

	assert.Equal(t, 5, f.ledger.Count())

	inv, err := f.investments.GetByIdentifier(ctx, "Fund A")
	require.NoError(t, err)
	assert.Equal(t, "Fund A", inv.Identifier)

	runs, err := f.uc.ListRuns(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 5, runs[1].Skipped)
}

func TestImportUseCase_DryRunFidelity(t *testing.T) {
	f := newImportFixture(0)
	ctx := context.Background()

	_, err := f.uc.ImportBatch(ctx, usecase.ImportBatchInput{Transactions: validBatch(2), Options: domain.DefaultImportOptions()})
	require.NoError(t, err)

	batch := append(validBatch(4), normalized("2024-01-01", "-1000", "Fund A"), normalized("", "5", "Fund A"))

	for _, opts := range []domain.ImportOptions{
		{SkipDuplicates: true},
		{SkipDuplicates: false},
		{SkipDuplicates: true, ForceImport: true},
	} {
		dryOpts := opts
		dryOpts.DryRun = true

		before := f.ledger.Count()
		dry, err := f.uc.ImportBatch(ctx, usecase.ImportBatchInput{Transactions: batch, Options: dryOpts})
		require.NoError(t, err)
		assert.Equal(t, before, f.ledger.Count(), "dry run must not write")
		assert.Empty(t, dry.RunID)
		assert.True(t, dry.DryRun)

		snapshot := newImportFixture(0)
		snapshot.ledger.Seed(mustList(t, f.ledger)...)

		committed, err := snapshot.uc.ImportBatch(ctx, usecase.ImportBatchInput{Transactions: batch, Options: opts})
		require.NoError(t, err)

		assert.Equal(t, committed.Imported, dry.Imported, "options %+v", opts)
		assert.Equal(t, committed.Skipped, dry.Skipped, "options %+v", opts)
	}
}

func mustList(t *testing.T, repo *mocks.FakeLedgerRepository) []*domain.LedgerTransaction {
	t.Helper()

	rows, err := repo.List(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)

	return rows
}

func TestImportUseCase_Gating(t *testing.T) {
	f := newImportFixture(0)

	batch := []*domain.NormalizedTransaction{
		normalized("2024-01-01", "-100", "Fund A"),
		normalized("2024-01-01", "-100", "Fund A"),
		normalized("", "-100", "Fund A"),
		normalized("2024-01-02", "-100", ""),
		nil,
	}

	summary, err := f.uc.ImportBatch(context.Background(), usecase.ImportBatchInput{Transactions: batch, Options: domain.DefaultImportOptions()})
	require.NoError(t, err)

	assert.Equal(t, []domain.OutcomeStatus{
		domain.OutcomeImported,
		domain.OutcomeSkippedDuplicate,
		domain.OutcomeSkippedInvalid,
		domain.OutcomeNeedsReview,
		domain.OutcomeSkippedInvalid,
	}, statuses(summary))
	assert.Equal(t, summary.IDs[0], summary.Outcomes[1].DuplicateRef)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 4, summary.Skipped)
	assert.Equal(t, 1, f.ledger.Count())
}

func TestImportUseCase_ForceImportFlagsReview(t *testing.T) {
	f := newImportFixture(0)

	batch := []*domain.NormalizedTransaction{
		normalized("2024-01-02", "-100", ""),
		normalized("", "-100", "Fund A"),
	}

	summary, err := f.uc.ImportBatch(context.Background(), usecase.ImportBatchInput{
		Transactions: batch,
		Options:      domain.ImportOptions{SkipDuplicates: true, ForceImport: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)

	for _, id := range summary.IDs {
		row, err := f.ledger.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, row.NeedsReview)
		assert.Nil(t, row.Fingerprint)
	}
}

func TestImportUseCase_BestEffortFailures(t *testing.T) {
	f := newImportFixture(0)

	inner := mocks.NewFakeLedgerRepository()
	f.ledger.InsertIfAbsentFunc = func(ctx context.Context, tx *domain.LedgerTransaction) (bool, string, error) {
		if tx.AmountOriginal.Decimal.Equal(decimal.NewFromInt(-2000)) {
			return false, "", errors.New("check constraint violated")
		}
		return inner.InsertIfAbsent(ctx, tx)
	}

	summary, err := f.uc.ImportBatch(context.Background(), usecase.ImportBatchInput{Transactions: validBatch(3), Options: domain.DefaultImportOptions()})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 1, summary.Errors[0].Index)
	assert.Contains(t, summary.Errors[0].Message, "check constraint")
	assert.Equal(t, 2, inner.Count())
}

func TestImportUseCase_DuplicateCheckFailureIsIsolated(t *testing.T) {
	f := newImportFixture(0)

	batch := validBatch(2)
	bad, _ := usecase.Fingerprint(batch[0])

	f.ledger.GetByFingerprintFunc = func(ctx context.Context, fingerprint string) (*domain.LedgerTransaction, error) {
		if fingerprint == bad {
			return nil, errors.New("timeout")
		}
		return nil, domain.ErrTransactionNotFound
	}

	summary, err := f.uc.ImportBatch(context.Background(), usecase.ImportBatchInput{Transactions: batch, Options: domain.DefaultImportOptions()})
	require.NoError(t, err)
	assert.Equal(t, []domain.OutcomeStatus{domain.OutcomeFailed, domain.OutcomeImported}, statuses(summary))
}

func TestImportUseCase_RunRecordFailureDoesNotFailBatch(t *testing.T) {
	f := newImportFixture(0)
	f.runs.CreateFunc = func(ctx context.Context, run *domain.ImportRun) error {
		return errors.New("disk full")
	}

	summary, err := f.uc.ImportBatch(context.Background(), usecase.ImportBatchInput{Transactions: validBatch(1), Options: domain.DefaultImportOptions()})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Empty(t, summary.RunID)
}

func TestImportUseCase_BatchSize(t *testing.T) {
	f := newImportFixture(3)

	_, err := f.uc.ImportBatch(context.Background(), usecase.ImportBatchInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = f.uc.ImportBatch(context.Background(), usecase.ImportBatchInput{Transactions: validBatch(4)})
	assert.ErrorIs(t, err, domain.ErrBatchTooLarge)

	_, err = f.uc.ImportRows(context.Background(), usecase.ImportRowsInput{})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestImportUseCase_ImportRows(t *testing.T) {
	f := newImportFixture(0)

	rows := []domain.RawRow{
		{"Date": "15/01/2024", "Amount": "₪40,000", "Type": "Capital Call", "Fund": "Fund A"},
		{"Date": "2024-06-30", "Amount": "2,000", "Currency": "USD", "Type": "Distribution", "Fund": "Fund A"},
		{"Date": "garbage", "Amount": "1", "Type": "Distribution", "Fund": "Fund A"},
	}

	summary, err := f.uc.ImportRows(context.Background(), usecase.ImportRowsInput{
		Rows:    rows,
		Types:   defaultTypes(t),
		Options: domain.DefaultImportOptions(),
		Source:  "capital-account.xlsx",
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.OutcomeStatus{
		domain.OutcomeImported,
		domain.OutcomeImported,
		domain.OutcomeSkippedInvalid,
	}, statuses(summary))
	assert.Contains(t, summary.Outcomes[2].Issues, domain.IssueUnparseableDate)

	call, err := f.ledger.GetByID(context.Background(), summary.IDs[0])
	require.NoError(t, err)
	assert.Equal(t, "-10000", call.AmountUSD.Decimal.String())
	assert.Equal(t, "ILS", call.OriginalCurrency)

	run, err := f.uc.GetRun(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, "capital-account.xlsx", run.Source)
	assert.Equal(t, 2, run.Imported)
}
