package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// ImportOptionsRequest carries import gating flags.
// SkipDuplicates defaults to true when omitted.
type ImportOptionsRequest struct {
	SkipDuplicates *bool `json:"skip_duplicates,omitempty"`
	ForceImport    bool  `json:"force_import"`
	DryRun         bool  `json:"dry_run"`
}

// ToDomain converts to domain options.
func (o *ImportOptionsRequest) ToDomain() domain.ImportOptions {
	opts := domain.DefaultImportOptions()
	if o == nil {
		return opts
	}

	if o.SkipDuplicates != nil {
		opts.SkipDuplicates = *o.SkipDuplicates
	}

	opts.ForceImport = o.ForceImport
	opts.DryRun = o.DryRun

	return opts
}

// ImportRequest represents a batch to import: either raw spreadsheet rows or
// records that were already normalized upstream.
type ImportRequest struct {
	Rows             []map[string]any             `json:"rows,omitempty"`
	Transactions     []NormalizedRecordRequest    `json:"transactions,omitempty"`
	Mapping          map[string][]string          `json:"mapping,omitempty"`
	TransactionTypes []domain.TransactionTypeRule `json:"transaction_types,omitempty"`
	DateFormat       string                       `json:"date_format,omitempty"`
	Source           string                       `json:"source,omitempty"`
	Options          *ImportOptionsRequest        `json:"options,omitempty"`
}

// ToUseCaseInput converts to use case input. The request mapping and type
// table replace the defaults when present.
func (r *ImportRequest) ToUseCaseInput(
	defaultMapping domain.FieldMapping,
	defaultTypes *domain.TransactionTypeTable,
) (usecase.ImportRowsInput, error) {
	mapping := defaultMapping
	if len(r.Mapping) > 0 {
		mapping = make(domain.FieldMapping, len(r.Mapping))
		for field, cols := range r.Mapping {
			mapping[domain.Field(strings.ToLower(strings.TrimSpace(field)))] = cols
		}
	}

	types := defaultTypes
	if len(r.TransactionTypes) > 0 {
		t, err := domain.NewTransactionTypeTable(r.TransactionTypes)
		if err != nil {
			return usecase.ImportRowsInput{}, err
		}

		types = t
	}

	rows := make([]domain.RawRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = domain.RawRow(row)
	}

	return usecase.ImportRowsInput{
		Rows:       rows,
		Mapping:    mapping,
		Types:      types,
		DateFormat: r.DateFormat,
		Options:    r.Options.ToDomain(),
		Source:     r.Source,
	}, nil
}

// IsNormalized reports whether the request carries normalized records.
func (r *ImportRequest) IsNormalized() bool {
	return len(r.Transactions) > 0
}

// ToBatchInput converts normalized records to use case input.
func (r *ImportRequest) ToBatchInput() (usecase.ImportBatchInput, error) {
	txs := make([]*domain.NormalizedTransaction, len(r.Transactions))
	for i := range r.Transactions {
		tx, err := r.Transactions[i].ToDomain()
		if err != nil {
			return usecase.ImportBatchInput{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs[i] = tx
	}

	return usecase.ImportBatchInput{
		Transactions: txs,
		Options:      r.Options.ToDomain(),
		Source:       r.Source,
	}, nil
}

// NormalizedRecordRequest is one pre-normalized transaction.
type NormalizedRecordRequest struct {
	Date                 string              `json:"date,omitempty"`
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
	SourceRow            map[string]any      `json:"source_row,omitempty"`
	Issues               []domain.Issue      `json:"issues,omitempty"`
}

// ToDomain converts the record. An empty date stays unresolved.
func (n *NormalizedRecordRequest) ToDomain() (*domain.NormalizedTransaction, error) {
	tx := &domain.NormalizedTransaction{
		AmountOriginal:       n.AmountOriginal,
		AmountNormalized:     n.AmountNormalized,
		OriginalCurrency:     strings.ToUpper(strings.TrimSpace(n.OriginalCurrency)),
		AmountUSD:            n.AmountUSD,
		AmountILS:            n.AmountILS,
		ExchangeRateToILS:    n.ExchangeRateToILS,
		TransactionType:      n.TransactionType,
		Category:             n.Category,
		Counterparty:         n.Counterparty,
		InvestmentIdentifier: strings.TrimSpace(n.InvestmentIdentifier),
		SourceRow:            n.SourceRow,
		Issues:               n.Issues,
	}

	switch {
	case n.Direction > 0:
		tx.Direction = domain.DirectionInflow
	case n.Direction < 0:
		tx.Direction = domain.DirectionOutflow
	}

	if n.Date != "" {
		d, err := domain.ParseISODate(n.Date)
		if err != nil {
			return nil, err
		}
		tx.Date = &d
	}

	return tx, nil
}

// SetRateRequest represents a manual exchange rate override.
type SetRateRequest struct {
	Date string `json:"date"`
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
}

// ParsedRate is a validated SetRateRequest.
type ParsedRate struct {
	Date time.Time
	From string
	To   string
	Rate decimal.Decimal
}

// Parse validates the request fields.
func (r *SetRateRequest) Parse() (ParsedRate, error) {
	date, err := domain.ParseISODate(r.Date)
	if err != nil {
		return ParsedRate{}, err
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(r.Rate))
	if err != nil {
		return ParsedRate{}, fmt.Errorf("%w: %q", domain.ErrInvalidRate, r.Rate)
	}

	return ParsedRate{
		Date: date,
		From: strings.ToUpper(strings.TrimSpace(r.From)),
		To:   strings.ToUpper(strings.TrimSpace(r.To)),
		Rate: rate,
	}, nil
}

// ReturnsQuery holds optional parameters of a returns request.
type ReturnsQuery struct {
	Residual string
	AsOf     string
}

// ToUseCaseInput converts query parameters to use case input.
func (q ReturnsQuery) ToUseCaseInput(identifier string) (usecase.ReturnsInput, error) {
	input := usecase.ReturnsInput{Identifier: identifier}

	if q.Residual != "" {
		d, err := decimal.NewFromString(q.Residual)
		if err != nil {
			return input, fmt.Errorf("invalid residual %q", q.Residual)
		}

		input.Residual = &d
	}

	if q.AsOf != "" {
		t, err := domain.ParseISODate(q.AsOf)
		if err != nil {
			return input, err
		}

		input.AsOf = &t
	}

	return input, nil
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
