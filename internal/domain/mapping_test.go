package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldMappingValue(t *testing.T) {
	t.Parallel()

	m := DefaultFieldMapping()
	row := RawRow{
		"  Transaction  Date ": "25/12/2023",
		"סכום":                 1500.5,
		"Currency":             "₪",
		"Fund":                 nil,
	}

	assert.Equal(t, "25/12/2023", m.String(row, FieldDate))
	assert.Equal(t, "1500.5", m.String(row, FieldAmount))
	assert.Equal(t, "₪", m.String(row, FieldCurrency))
	assert.Equal(t, "", m.String(row, FieldInvestment))
	assert.Equal(t, "", m.String(row, FieldCounterparty))

	v, ok := m.Value(row, FieldAmount)
	assert.True(t, ok)
	assert.Equal(t, 1500.5, v)
}

func TestFieldMappingFirstCandidateWins(t *testing.T) {
	t.Parallel()

	m := FieldMapping{FieldAmount: {"net", "gross"}}
	row := RawRow{"gross": "10", "net": "8"}

	assert.Equal(t, "8", m.String(row, FieldAmount))
}
