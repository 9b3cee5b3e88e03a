package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID                   string              `json:"id"`
	Date                 *string             `json:"date"`
	AmountOriginal       decimal.NullDecimal `json:"amount_original"`
	AmountNormalized     decimal.NullDecimal `json:"amount_normalized"`
	OriginalCurrency     string              `json:"original_currency,omitempty"`
	AmountUSD            decimal.NullDecimal `json:"amount_usd"`
	AmountILS            decimal.NullDecimal `json:"amount_ils"`
	ExchangeRateToILS    decimal.NullDecimal `json:"exchange_rate_to_ils"`
	TransactionType      string              `json:"transaction_type,omitempty"`
	Category             string              `json:"category,omitempty"`
	Direction            int                 `json:"direction"`
	Counterparty         string              `json:"counterparty,omitempty"`
	InvestmentIdentifier string              `json:"investment_identifier,omitempty"`
	Fingerprint          *string             `json:"fingerprint"`
	ImportRunID          string              `json:"import_run_id,omitempty"`
	NeedsReview          bool                `json:"needs_review"`
	Issues               []domain.Issue      `json:"issues,omitempty"`
	SourceRow            map[string]any      `json:"source_row,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.LedgerTransaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:                   t.ID,
		AmountOriginal:       t.AmountOriginal,
		AmountNormalized:     t.AmountNormalized,
		OriginalCurrency:     t.OriginalCurrency,
		AmountUSD:            t.AmountUSD,
		AmountILS:            t.AmountILS,
		ExchangeRateToILS:    t.ExchangeRateToILS,
		TransactionType:      t.TransactionType,
		Category:             t.Category,
		Direction:            int(t.Direction),
		Counterparty:         t.Counterparty,
		InvestmentIdentifier: t.InvestmentIdentifier,
		Fingerprint:          t.Fingerprint,
		ImportRunID:          t.ImportRunID,
		NeedsReview:          t.NeedsReview,
		Issues:               t.Issues,
		SourceRow:            t.SourceRow,
		CreatedAt:            t.CreatedAt,
	}

	if iso := t.DateISO(); iso != "" {
		resp.Date = &iso
	}

	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.LedgerTransaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// InvestmentResponse represents an investment in API responses.
type InvestmentResponse struct {
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// InvestmentsFromDomain converts domain investments to responses.
func InvestmentsFromDomain(investments []*domain.Investment) []*InvestmentResponse {
	result := make([]*InvestmentResponse, len(investments))
	for i, inv := range investments {
		result[i] = &InvestmentResponse{
			Identifier: inv.Identifier,
			Name:       inv.Name,
			CreatedAt:  inv.CreatedAt,
		}
	}
	return result
}

// OutcomeResponse is the per-record result of an import.
type OutcomeResponse struct {
	Index         int                   `json:"index"`
	Status        domain.OutcomeStatus  `json:"status"`
	TransactionID string                `json:"transaction_id,omitempty"`
	Fingerprint   string                `json:"fingerprint,omitempty"`
	DuplicateRef  string                `json:"duplicate_ref,omitempty"`
	Similar       []domain.SimilarMatch `json:"similar,omitempty"`
	Issues        []domain.Issue        `json:"issues,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// ImportSummaryResponse represents the result of an import batch.
type ImportSummaryResponse struct {
	RunID    string               `json:"run_id,omitempty"`
	Total    int                  `json:"total"`
	Imported int                  `json:"imported"`
	Skipped  int                  `json:"skipped"`
	Failed   int                  `json:"failed"`
	DryRun   bool                 `json:"dry_run"`
	IDs      []string             `json:"ids"`
	Errors   []domain.ImportError `json:"errors"`
	Outcomes []OutcomeResponse    `json:"outcomes"`
}

// ImportSummaryFromDomain converts a domain summary to response.
func ImportSummaryFromDomain(s *domain.ImportSummary) *ImportSummaryResponse {
	resp := &ImportSummaryResponse{
		RunID:    s.RunID,
		Total:    s.Total,
		Imported: s.Imported,
		Skipped:  s.Skipped,
		Failed:   s.Failed,
		DryRun:   s.DryRun,
		IDs:      s.IDs,
		Errors:   s.Errors,
		Outcomes: make([]OutcomeResponse, len(s.Outcomes)),
	}

	if resp.IDs == nil {
		resp.IDs = []string{}
	}

	if resp.Errors == nil {
		resp.Errors = []domain.ImportError{}
	}

	for i, o := range s.Outcomes {
		resp.Outcomes[i] = OutcomeResponse{
			Index:         o.Index,
			Status:        o.Status,
			TransactionID: o.TransactionID,
			Fingerprint:   o.Fingerprint,
			DuplicateRef:  o.DuplicateRef,
			Similar:       o.Similar,
			Issues:        o.Issues,
			Error:         o.Error,
		}
	}

	return resp
}

// ImportRunResponse represents an import audit record.
type ImportRunResponse struct {
	ID         string               `json:"id"`
	Source     string               `json:"source,omitempty"`
	Options    domain.ImportOptions `json:"options"`
	Total      int                  `json:"total"`
	Imported   int                  `json:"imported"`
	Skipped    int                  `json:"skipped"`
	Failed     int                  `json:"failed"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
}

// ImportRunFromDomain converts a domain import run to response.
func ImportRunFromDomain(r *domain.ImportRun) *ImportRunResponse {
	return &ImportRunResponse{
		ID:         r.ID,
		Source:     r.Source,
		Options:    r.Options,
		Total:      r.Total,
		Imported:   r.Imported,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// ImportRunsFromDomain converts domain import runs to responses.
func ImportRunsFromDomain(runs []*domain.ImportRun) []*ImportRunResponse {
	result := make([]*ImportRunResponse, len(runs))
	for i, r := range runs {
		result[i] = ImportRunFromDomain(r)
	}
	return result
}

// RateResponse represents a cached exchange rate.
type RateResponse struct {
	Date      string            `json:"date"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Rate      decimal.Decimal   `json:"rate"`
	Source    domain.RateSource `json:"source"`
	Provider  string            `json:"provider,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RateFromDomain converts a domain rate to response.
func RateFromDomain(r *domain.ExchangeRate) *RateResponse {
	return &RateResponse{
		Date:      r.Key.Date.Format(domain.DateLayout),
		From:      r.Key.From,
		To:        r.Key.To,
		Rate:      r.Rate,
		Source:    r.Source,
		Provider:  r.Provider,
		UpdatedAt: r.UpdatedAt,
	}
}

// ReturnsResponse represents return metrics. Undefined ratios are null.
type ReturnsResponse struct {
	Identifier      string          `json:"identifier,omitempty"`
	AsOf            string          `json:"as_of"`
	Called          decimal.Decimal `json:"called"`
	Distributions   decimal.Decimal `json:"distributions"`
	Residual        decimal.Decimal `json:"residual"`
	ResidualAssumed bool            `json:"residual_assumed"`
	XIRR            *float64        `json:"xirr"`
	MOIC            *float64        `json:"moic"`
	DPI             *float64        `json:"dpi"`
	RVPI            *float64        `json:"rvpi"`
	TVPI            *float64        `json:"tvpi"`
	FlowCount       int             `json:"flow_count"`
	ExcludedCount   int             `json:"excluded_count"`
}

// ReturnsFromDomain converts domain metrics to response.
func ReturnsFromDomain(m *domain.ReturnMetrics) *ReturnsResponse {
	return &ReturnsResponse{
		Identifier:      m.Identifier,
		AsOf:            m.AsOf.Format(domain.DateLayout),
		Called:          m.Called,
		Distributions:   m.Distributions,
		Residual:        m.Residual,
		ResidualAssumed: m.ResidualAssumed,
		XIRR:            m.XIRR,
		MOIC:            m.MOIC,
		DPI:             m.DPI,
		RVPI:            m.RVPI,
		TVPI:            m.TVPI,
		FlowCount:       m.FlowCount,
		ExcludedCount:   m.ExcludedCount,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
