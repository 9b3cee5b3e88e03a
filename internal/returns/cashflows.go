package returns

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// Totals splits a signed series into called capital and distributions.
// Outflows (negative) are capital called; inflows are distributions.
func Totals(flows []domain.CashFlow) (called, distributions decimal.Decimal) {
	for _, f := range flows {
		if f.Amount.IsNegative() {
			called = called.Add(f.Amount.Neg())
		} else {
			distributions = distributions.Add(f.Amount)
		}
	}

	return called, distributions
}

// WithResidual returns flows sorted by date with a synthetic inflow of the
// residual value at asOf. A non-positive residual adds nothing.
func WithResidual(flows []domain.CashFlow, residual decimal.Decimal, asOf time.Time) []domain.CashFlow {
	out := make([]domain.CashFlow, 0, len(flows)+1)
	out = append(out, flows...)

	if residual.IsPositive() {
		out = append(out, domain.CashFlow{Date: asOf, Amount: residual})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out
}
