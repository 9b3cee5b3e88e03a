package domain

import "strings"

// Field is a logical transaction field fed from a raw spreadsheet column.
type Field string

const (
	FieldDate              Field = "date"
	FieldAmount            Field = "amount"
	FieldCurrency          Field = "currency"
	FieldTransactionType   Field = "transaction_type"
	FieldCounterparty      Field = "counterparty"
	FieldInvestment        Field = "investment"
	FieldAmountILS         Field = "amount_ils"
	FieldExchangeRateToILS Field = "exchange_rate_to_ils"
)

// RawRow is one extracted spreadsheet row: column name to cell value.
// Cell values are strings, numbers, or nil.
type RawRow map[string]any

// FieldMapping lists, per logical field, the column names that may hold it.
// The first column present in a row wins.
type FieldMapping map[Field][]string

// Value returns the cell for a field, matching headers case-insensitively.
func (m FieldMapping) Value(row RawRow, field Field) (any, bool) {
	candidates := m[field]
	if len(candidates) == 0 {
		return nil, false
	}

	for _, c := range candidates {
		if v, ok := row[c]; ok {
			return v, true
		}
	}

	for col, v := range row {
		key := headerKey(col)
		for _, c := range candidates {
			if key == headerKey(c) {
				return v, true
			}
		}
	}

	return nil, false
}

// String returns the cell for a field as trimmed text.
func (m FieldMapping) String(row RawRow, field Field) string {
	v, ok := m.Value(row, field)
	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}

	return strings.TrimSpace(stringify(v))
}

func headerKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// DefaultFieldMapping recognizes common English and Hebrew headers.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		FieldDate:              {"date", "transaction date", "value date", "תאריך", "תאריך ערך", "תאריך עסקה"},
		FieldAmount:            {"amount", "sum", "value", "סכום", "סכום בש\"ח", "סכום עסקה"},
		FieldCurrency:          {"currency", "ccy", "מטבע"},
		FieldTransactionType:   {"type", "transaction type", "action", "סוג", "סוג פעולה", "סוג תנועה"},
		FieldCounterparty:      {"counterparty", "payee", "description", "צד נגדי", "תיאור", "מוטב"},
		FieldInvestment:        {"investment", "fund", "investment name", "השקעה", "שם ההשקעה", "קרן"},
		FieldAmountILS:         {"amount ils", "amount_ils", "סכום בשקלים"},
		FieldExchangeRateToILS: {"exchange rate", "rate to ils", "exchange_rate_to_ils", "שער", "שער המרה"},
	}
}
