package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

func defaultTable(t *testing.T) *domain.TransactionTypeTable {
	t.Helper()

	table, err := domain.NewTransactionTypeTable(domain.DefaultTransactionTypes())
	require.NoError(t, err)

	return table
}

func TestImportHandler_Create(t *testing.T) {
	var captured usecase.ImportRowsInput

	summary := &domain.ImportSummary{RunID: "run-1", Total: 2}
	summary.Record(domain.ImportOutcome{Index: 0, Status: domain.OutcomeImported, TransactionID: "tx-1"})
	summary.Record(domain.ImportOutcome{Index: 1, Status: domain.OutcomeSkippedDuplicate, DuplicateRef: "tx-0"})

	table := defaultTable(t)
	h := NewImportHandler(&importServiceStub{
		importFn: func(_ context.Context, input usecase.ImportRowsInput) (*domain.ImportSummary, error) {
			captured = input
			return summary, nil
		},
	}, domain.DefaultFieldMapping(), table)

	body := `{"rows":[{"date":"2024-01-15","amount":1000.50,"investment":"Fund A"},{"date":"2024-01-15","amount":"1,000.50"}],
		"source":"q1.xlsx","options":{"force_import":true}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, captured.Rows, 2)
	assert.Equal(t, json.Number("1000.50"), captured.Rows[0]["amount"])
	assert.Equal(t, "q1.xlsx", captured.Source)
	assert.True(t, captured.Options.SkipDuplicates)
	assert.True(t, captured.Options.ForceImport)
	assert.Same(t, table, captured.Types)

	var resp dto.ImportSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.RunID)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, []string{"tx-1"}, resp.IDs)
	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, "tx-0", resp.Outcomes[1].DuplicateRef)
}

func TestImportHandler_Create_DryRunIsOK(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		importFn: func(_ context.Context, input usecase.ImportRowsInput) (*domain.ImportSummary, error) {
			assert.True(t, input.Options.DryRun)
			assert.False(t, input.Options.SkipDuplicates)
			return &domain.ImportSummary{DryRun: true}, nil
		},
	}, domain.DefaultFieldMapping(), defaultTable(t))

	body := `{"rows":[{"date":"2024-01-15"}],"options":{"dry_run":true,"skip_duplicates":false}}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportHandler_Create_CustomMappingAndTypes(t *testing.T) {
	var captured usecase.ImportRowsInput

	h := NewImportHandler(&importServiceStub{
		importFn: func(_ context.Context, input usecase.ImportRowsInput) (*domain.ImportSummary, error) {
			captured = input
			return &domain.ImportSummary{}, nil
		},
	}, domain.DefaultFieldMapping(), defaultTable(t))

	body := `{"rows":[{"When":"2024-01-15"}],"mapping":{"Date":["When"]},
		"transaction_types":[{"type":"Call","category":"capital_call","rule":"always_negative"}]}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"When"}, captured.Mapping[domain.FieldDate])
	assert.Equal(t, 1, captured.Types.Len())
}

func TestImportHandler_Create_BadRequests(t *testing.T) {
	h := NewImportHandler(&importServiceStub{
		importFn: func(context.Context, usecase.ImportRowsInput) (*domain.ImportSummary, error) {
			return nil, domain.ErrEmptyBatch
		},
	}, domain.DefaultFieldMapping(), defaultTable(t))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"rows":`, http.StatusBadRequest},
		{"bad rule", `{"rows":[{}],"transaction_types":[{"type":"x","rule":"sideways"}]}`, http.StatusBadRequest},
		{"empty batch", `{"rows":[]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestImportHandler_ListAndGet(t *testing.T) {
	run := &domain.ImportRun{ID: "run-1", Source: "q1.xlsx", Total: 3, Imported: 2, Skipped: 1, StartedAt: time.Now()}

	h := NewImportHandler(&importServiceStub{
		listRunFn: func(_ context.Context, limit, offset int) ([]*domain.ImportRun, error) {
			assert.Equal(t, 10, limit)
			assert.Equal(t, 5, offset)
			return []*domain.ImportRun{run}, nil
		},
		getRunFn: func(_ context.Context, id string) (*domain.ImportRun, error) {
			if id == "run-1" {
				return run, nil
			}
			return nil, domain.ErrImportRunNotFound
		},
	}, domain.DefaultFieldMapping(), defaultTable(t))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports?limit=10&offset=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []dto.ImportRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Imported)

	rec = httptest.NewRecorder()
	h.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/imports/run-1", nil), "id", "run-1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/imports/nope", nil), "id", "nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportHandler_Create_NormalizedRecords(t *testing.T) {
	var captured usecase.ImportBatchInput

	h := NewImportHandler(&importServiceStub{
		batchFn: func(_ context.Context, input usecase.ImportBatchInput) (*domain.ImportSummary, error) {
			captured = input
			return &domain.ImportSummary{Total: len(input.Transactions)}, nil
		},
	}, domain.DefaultFieldMapping(), defaultTable(t))

	body := `{"transactions":[
		{"date":"2024-01-15","amount_original":"1000.50","amount_normalized":"-1000.50","original_currency":"usd",
		 "amount_usd":"-1000.50","direction":-1,"investment_identifier":" Fund A "},
		{"amount_original":null}
	],"options":{"dry_run":true}}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, captured.Transactions, 2)

	first := captured.Transactions[0]
	require.NotNil(t, first.Date)
	assert.Equal(t, "2024-01-15", first.DateISO())
	assert.Equal(t, "USD", first.OriginalCurrency)
	assert.Equal(t, "Fund A", first.InvestmentIdentifier)
	assert.Equal(t, domain.DirectionOutflow, first.Direction)
	assert.True(t, first.AmountNormalized.Valid)
	assert.True(t, captured.Options.DryRun)

	second := captured.Transactions[1]
	assert.Nil(t, second.Date)
	assert.False(t, second.AmountOriginal.Valid)

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/imports",
		strings.NewReader(`{"transactions":[{"date":"15/01/2024"}]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
