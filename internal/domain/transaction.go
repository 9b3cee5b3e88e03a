package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date layout used for every ledger date.
const DateLayout = "2006-01-02"

// Direction is the sign of a cash flow from the investor's point of view.
type Direction int

const (
	DirectionUnknown Direction = 0
	DirectionInflow  Direction = 1
	DirectionOutflow Direction = -1
)

// Issue is a non-fatal problem found while normalizing a row.
type Issue string

const (
	IssueUnparseableDate        Issue = "unparseable_date"
	IssueUnparseableAmount      Issue = "unparseable_amount"
	IssueUnknownTransactionType Issue = "unknown_transaction_type"
	IssueUnknownCurrency        Issue = "unknown_currency"
	IssueRateUnavailable        Issue = "rate_unavailable"
	IssueMissingInvestment      Issue = "missing_investment"
)

// NormalizedTransaction is one raw row turned into canonical form.
// Every field may be unresolved; the zero value of a Null type means null.
type NormalizedTransaction struct {
	Date                 *time.Time
	AmountOriginal       decimal.NullDecimal
	AmountNormalized     decimal.NullDecimal
	OriginalCurrency     string
	AmountUSD            decimal.NullDecimal
	AmountILS            decimal.NullDecimal
	ExchangeRateToILS    decimal.NullDecimal
	TransactionType      string
	Category             string
	Direction            Direction
	Counterparty         string
	InvestmentIdentifier string
	SourceRow            map[string]any
	Issues               []Issue
}

// DateISO returns the transaction date as YYYY-MM-DD, or "" when unresolved.
func (t *NormalizedTransaction) DateISO() string {
	if t.Date == nil {
		return ""
	}

	return t.Date.Format(DateLayout)
}

// HasRequiredFields reports whether date and amount both resolved.
func (t *NormalizedTransaction) HasRequiredFields() bool {
	return t.Date != nil && t.AmountOriginal.Valid
}

// HasIssue reports whether the given issue was recorded.
func (t *NormalizedTransaction) HasIssue(issue Issue) bool {
	for _, i := range t.Issues {
		if i == issue {
			return true
		}
	}

	return false
}

// AddIssue records a non-fatal normalization issue once.
func (t *NormalizedTransaction) AddIssue(issue Issue) {
	if !t.HasIssue(issue) {
		t.Issues = append(t.Issues, issue)
	}
}

// LedgerTransaction is a persisted, imported transaction.
type LedgerTransaction struct {
	NormalizedTransaction

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	Fingerprint *string
	ImportRunID string
	NeedsReview bool
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	From                 *time.Time
	To                   *time.Time
	InvestmentIdentifier string
	Limit                int
	Offset               int
}
