package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/parser"
)

// ExactNameResolver keys investments by their raw name, trimmed of
// surrounding whitespace. Spelling and script variants stay distinct.
type ExactNameResolver struct{}

// Resolve returns the trimmed raw name.
func (ExactNameResolver) Resolve(raw string) string {
	return strings.TrimSpace(raw)
}

// Normalizer turns raw rows into normalized transactions.
type Normalizer struct {
	rates           RateLookup
	identity        IdentityResolver
	logger          zerolog.Logger
	defaultCurrency string
}

// NewNormalizer creates a new Normalizer. defaultCurrency is used for rows
// with no currency cell and no currency symbol; it may be empty.
func NewNormalizer(rates RateLookup, identity IdentityResolver, defaultCurrency string, logger zerolog.Logger) *Normalizer {
	if identity == nil {
		identity = ExactNameResolver{}
	}

	return &Normalizer{
		rates:           rates,
		identity:        identity,
		logger:          logger,
		defaultCurrency: parser.NormalizeCurrency(defaultCurrency),
	}
}

// NormalizeInput is one row together with the rules used to read it.
type NormalizeInput struct {
	Row        domain.RawRow
	Mapping    domain.FieldMapping
	Types      *domain.TransactionTypeTable
	DateFormat string
}

// Normalize converts one row. Unparseable cells leave their fields unset and
// add an issue; the only error is a failing rate store.
func (n *Normalizer) Normalize(ctx context.Context, input NormalizeInput) (*domain.NormalizedTransaction, error) {
	mapping := input.Mapping
	if mapping == nil {
		mapping = domain.DefaultFieldMapping()
	}

	tx := &domain.NormalizedTransaction{
		SourceRow: copyRow(input.Row),
		Direction: domain.DirectionUnknown,
	}

	dateCell, _ := mapping.Value(input.Row, domain.FieldDate)
	if d, ok := parser.ParseDate(dateCell, input.DateFormat); ok {
		tx.Date = &d
	} else {
		tx.AddIssue(domain.IssueUnparseableDate)
	}

	amountCell, _ := mapping.Value(input.Row, domain.FieldAmount)
	tx.AmountOriginal = parser.ParseAmount(amountCell)
	if !tx.AmountOriginal.Valid {
		tx.AddIssue(domain.IssueUnparseableAmount)
	}

	tx.OriginalCurrency = n.currency(mapping, input.Row, amountCell)
	if tx.OriginalCurrency != "" && !parser.IsKnownCurrency(tx.OriginalCurrency) {
		tx.AddIssue(domain.IssueUnknownCurrency)
	}

	n.applyDirectionality(tx, mapping.String(input.Row, domain.FieldTransactionType), input.Types)

	if err := n.convert(ctx, tx); err != nil {
		return nil, err
	}

	tx.Counterparty = mapping.String(input.Row, domain.FieldCounterparty)

	tx.InvestmentIdentifier = n.identity.Resolve(mapping.String(input.Row, domain.FieldInvestment))
	if tx.InvestmentIdentifier == "" {
		tx.AddIssue(domain.IssueMissingInvestment)
	}

	if v, ok := mapping.Value(input.Row, domain.FieldAmountILS); ok {
		tx.AmountILS = parser.ParseAmount(v)
	}

	if v, ok := mapping.Value(input.Row, domain.FieldExchangeRateToILS); ok {
		tx.ExchangeRateToILS = parser.ParseAmount(v)
	}

	return tx, nil
}

func (n *Normalizer) currency(mapping domain.FieldMapping, row domain.RawRow, amountCell any) string {
	if c := parser.NormalizeCurrency(mapping.String(row, domain.FieldCurrency)); c != "" {
		return c
	}

	if s, ok := amountCell.(string); ok {
		if c := parser.DetectCurrency(s); c != "" {
			return c
		}
	}

	return n.defaultCurrency
}

func (n *Normalizer) applyDirectionality(tx *domain.NormalizedTransaction, rawType string, types *domain.TransactionTypeTable) {
	tx.TransactionType = rawType

	rule, ok := types.Lookup(rawType)
	if !ok {
		tx.AddIssue(domain.IssueUnknownTransactionType)
		tx.AmountNormalized = tx.AmountOriginal
		n.logger.Warn().Str("transaction_type", rawType).Msg("unknown transaction type, amount left unmodified")

		return
	}

	tx.Category = rule.Category

	if !tx.AmountOriginal.Valid {
		return
	}

	normalized := rule.Rule.Apply(tx.AmountOriginal.Decimal)
	tx.AmountNormalized = decimal.NewNullDecimal(normalized)

	switch normalized.Sign() {
	case 1:
		tx.Direction = domain.DirectionInflow
	case -1:
		tx.Direction = domain.DirectionOutflow
	}
}

func (n *Normalizer) convert(ctx context.Context, tx *domain.NormalizedTransaction) error {
	if !tx.AmountNormalized.Valid || tx.OriginalCurrency == "" || tx.Date == nil {
		return nil
	}

	if tx.HasIssue(domain.IssueUnknownCurrency) {
		tx.AddIssue(domain.IssueRateUnavailable)
		return nil
	}

	rate, err := n.rates.Rate(ctx, *tx.Date, tx.OriginalCurrency, TargetCurrency)
	if err != nil {
		return fmt.Errorf("failed to resolve %s rate: %w", tx.OriginalCurrency, err)
	}

	if !rate.Valid {
		tx.AddIssue(domain.IssueRateUnavailable)
		n.logger.Warn().
			Str("currency", tx.OriginalCurrency).
			Str("date", tx.DateISO()).
			Msg("no exchange rate, amount_usd left empty")

		return nil
	}

	tx.AmountUSD = decimal.NewNullDecimal(tx.AmountNormalized.Decimal.Mul(rate.Decimal).Round(6))

	return nil
}

func copyRow(row domain.RawRow) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}

	return out
}
