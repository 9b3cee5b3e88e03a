package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DirectionalityRule decides how the sign of a raw amount is adjusted.
type DirectionalityRule string

const (
	RuleAsIs           DirectionalityRule = "as_is"
	RuleAlwaysPositive DirectionalityRule = "always_positive"
	RuleAlwaysNegative DirectionalityRule = "always_negative"
)

// ParseDirectionalityRule validates a rule name.
func ParseDirectionalityRule(s string) (DirectionalityRule, error) {
	switch r := DirectionalityRule(strings.ToLower(strings.TrimSpace(s))); r {
	case RuleAsIs, RuleAlwaysPositive, RuleAlwaysNegative:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirectionality, s)
	}
}

// Apply returns amount with its sign adjusted by the rule.
func (r DirectionalityRule) Apply(amount decimal.Decimal) decimal.Decimal {
	switch r {
	case RuleAlwaysPositive:
		return amount.Abs()
	case RuleAlwaysNegative:
		return amount.Abs().Neg()
	default:
		return amount
	}
}

// TransactionTypeRule maps one raw transaction type to a category and sign rule.
type TransactionTypeRule struct {
	Type     string             `json:"type"`
	Category string             `json:"category"`
	Rule     DirectionalityRule `json:"rule"`
}

// TransactionTypeTable is an immutable raw-type lookup.
// Keys are matched case-insensitively with whitespace collapsed.
type TransactionTypeTable struct {
	rules map[string]TransactionTypeRule
}

// NewTransactionTypeTable builds a table, rejecting unknown rules.
func NewTransactionTypeTable(rules []TransactionTypeRule) (*TransactionTypeTable, error) {
	t := &TransactionTypeTable{rules: make(map[string]TransactionTypeRule, len(rules))}

	for _, r := range rules {
		rule, err := ParseDirectionalityRule(string(r.Rule))
		if err != nil {
			return nil, fmt.Errorf("transaction type %q: %w", r.Type, err)
		}

		key := typeKey(r.Type)
		if key == "" {
			return nil, fmt.Errorf("%w: empty transaction type", ErrUnknownDirectionality)
		}

		r.Rule = rule
		t.rules[key] = r
	}

	return t, nil
}

// Lookup finds the rule for a raw transaction type.
func (t *TransactionTypeTable) Lookup(rawType string) (TransactionTypeRule, bool) {
	if t == nil {
		return TransactionTypeRule{}, false
	}

	r, ok := t.rules[typeKey(rawType)]

	return r, ok
}

// Len returns the number of entries.
func (t *TransactionTypeTable) Len() int {
	if t == nil {
		return 0
	}

	return len(t.rules)
}

func typeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// DefaultTransactionTypes is the built-in English and Hebrew type table.
func DefaultTransactionTypes() []TransactionTypeRule {
	return []TransactionTypeRule{
		{Type: "Capital Call", Category: "capital_call", Rule: RuleAlwaysNegative},
		{Type: "קריאת הון", Category: "capital_call", Rule: RuleAlwaysNegative},
		{Type: "Contribution", Category: "contribution", Rule: RuleAlwaysNegative},
		{Type: "הפקדה", Category: "contribution", Rule: RuleAlwaysNegative},
		{Type: "Investment", Category: "contribution", Rule: RuleAlwaysNegative},
		{Type: "השקעה", Category: "contribution", Rule: RuleAlwaysNegative},
		{Type: "Management Fee", Category: "fee", Rule: RuleAlwaysNegative},
		{Type: "Fee", Category: "fee", Rule: RuleAlwaysNegative},
		{Type: "דמי ניהול", Category: "fee", Rule: RuleAlwaysNegative},
		{Type: "Distribution", Category: "distribution", Rule: RuleAlwaysPositive},
		{Type: "חלוקה", Category: "distribution", Rule: RuleAlwaysPositive},
		{Type: "Dividend", Category: "dividend", Rule: RuleAlwaysPositive},
		{Type: "דיבידנד", Category: "dividend", Rule: RuleAlwaysPositive},
		{Type: "Interest", Category: "interest", Rule: RuleAlwaysPositive},
		{Type: "ריבית", Category: "interest", Rule: RuleAlwaysPositive},
		{Type: "Return of Capital", Category: "return_of_capital", Rule: RuleAlwaysPositive},
		{Type: "החזר הון", Category: "return_of_capital", Rule: RuleAlwaysPositive},
		{Type: "Redemption", Category: "redemption", Rule: RuleAlwaysPositive},
		{Type: "פדיון", Category: "redemption", Rule: RuleAlwaysPositive},
		{Type: "Adjustment", Category: "adjustment", Rule: RuleAsIs},
		{Type: "התאמה", Category: "adjustment", Rule: RuleAsIs},
		{Type: "Transfer", Category: "transfer", Rule: RuleAsIs},
		{Type: "העברה", Category: "transfer", Rule: RuleAsIs},
	}
}
