package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionalityRuleApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rule   DirectionalityRule
		amount int64
		want   int64
	}{
		{"always positive flips negative", RuleAlwaysPositive, -1000, 1000},
		{"always positive keeps positive", RuleAlwaysPositive, 1000, 1000},
		{"always negative flips positive", RuleAlwaysNegative, 500, -500},
		{"always negative keeps negative", RuleAlwaysNegative, -500, -500},
		{"as is keeps negative", RuleAsIs, -42, -42},
		{"as is keeps positive", RuleAsIs, 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.Apply(decimal.NewFromInt(tt.amount))
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}

func TestParseDirectionalityRule(t *testing.T) {
	t.Parallel()

	r, err := ParseDirectionalityRule(" Always_Negative ")
	require.NoError(t, err)
	assert.Equal(t, RuleAlwaysNegative, r)

	_, err = ParseDirectionalityRule("flip")
	assert.True(t, errors.Is(err, ErrUnknownDirectionality))
}

func TestTransactionTypeTableLookup(t *testing.T) {
	t.Parallel()

	table, err := NewTransactionTypeTable(DefaultTransactionTypes())
	require.NoError(t, err)

	r, ok := table.Lookup("  capital   CALL ")
	require.True(t, ok)
	assert.Equal(t, "capital_call", r.Category)
	assert.Equal(t, RuleAlwaysNegative, r.Rule)

	r, ok = table.Lookup("חלוקה")
	require.True(t, ok)
	assert.Equal(t, RuleAlwaysPositive, r.Rule)

	_, ok = table.Lookup("mystery")
	assert.False(t, ok)

	var nilTable *TransactionTypeTable
	_, ok = nilTable.Lookup("Distribution")
	assert.False(t, ok)
}

func TestNewTransactionTypeTableRejectsBadRule(t *testing.T) {
	t.Parallel()

	_, err := NewTransactionTypeTable([]TransactionTypeRule{{Type: "X", Rule: "sideways"}})
	assert.ErrorIs(t, err, ErrUnknownDirectionality)

	_, err = NewTransactionTypeTable([]TransactionTypeRule{{Type: "  ", Rule: RuleAsIs}})
	assert.ErrorIs(t, err, ErrUnknownDirectionality)
}
