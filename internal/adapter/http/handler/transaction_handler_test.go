package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundledger/internal/adapter/http/dto"
	"github.com/iho/fundledger/internal/domain"
)

func sampleTransaction() *domain.LedgerTransaction {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	fp := "abc"

	return &domain.LedgerTransaction{
		ID:          "tx-1",
		Fingerprint: &fp,
		NormalizedTransaction: domain.NormalizedTransaction{
			Date:                 &date,
			AmountOriginal:       decimal.NewNullDecimal(decimal.RequireFromString("1000.50")),
			AmountNormalized:     decimal.NewNullDecimal(decimal.RequireFromString("-1000.50")),
			OriginalCurrency:     "USD",
			InvestmentIdentifier: "Fund A",
			Direction:            domain.DirectionOutflow,
		},
	}
}

func TestTransactionHandler_List(t *testing.T) {
	var captured domain.TransactionFilter

	h := NewTransactionHandler(&transactionServiceStub{
		listFn: func(_ context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error) {
			captured = filter
			return []*domain.LedgerTransaction{sampleTransaction()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions?investment=Fund+A&from=2024-01-01&to=2024-12-31&limit=5", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fund A", captured.InvestmentIdentifier)
	assert.Equal(t, 5, captured.Limit)
	require.NotNil(t, captured.From)
	require.NotNil(t, captured.To)
	assert.Equal(t, "2024-12-31", captured.To.Format(domain.DateLayout))

	var resp []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.NotNil(t, resp[0].Date)
	assert.Equal(t, "2024-01-15", *resp[0].Date)
	assert.Equal(t, "-1000.5", resp[0].AmountNormalized.Decimal.String())
	assert.Equal(t, -1, resp[0].Direction)
}

func TestTransactionHandler_List_InvalidDate(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions?from=15/01/2024", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionHandler_Get(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{
		getFn: func(_ context.Context, id string) (*domain.LedgerTransaction, error) {
			if id == "tx-1" {
				return sampleTransaction(), nil
			}
			return nil, domain.ErrTransactionNotFound
		},
	})

	rec := httptest.NewRecorder()
	h.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/transactions/tx-1", nil), "id", "tx-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tx-1", resp.ID)
	require.NotNil(t, resp.Fingerprint)
	assert.Equal(t, "abc", *resp.Fingerprint)

	rec = httptest.NewRecorder()
	h.Get(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/transactions/missing", nil), "id", "missing"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionHandler_Similar(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{
		similarFn: func(_ context.Context, id string, threshold int) ([]domain.SimilarMatch, error) {
			assert.Equal(t, "tx-1", id)
			assert.Equal(t, 80, threshold)
			return nil, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/transactions/tx-1/similar?threshold=80", nil), "id", "tx-1")
	rec := httptest.NewRecorder()
	h.Similar(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTransactionHandler_ListInvestments(t *testing.T) {
	h := NewTransactionHandler(&transactionServiceStub{
		investmentsFn: func(_ context.Context, limit, offset int) ([]*domain.Investment, error) {
			assert.Equal(t, domain.DefaultPageSize, limit)
			return []*domain.Investment{{Identifier: "Fund A", Name: "Fund A"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.ListInvestments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/investments", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.InvestmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Fund A", resp[0].Identifier)

	h = NewTransactionHandler(&transactionServiceStub{
		investmentsFn: func(context.Context, int, int) ([]*domain.Investment, error) {
			return nil, errors.New("db down")
		},
	})

	rec = httptest.NewRecorder()
	h.ListInvestments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/investments", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
