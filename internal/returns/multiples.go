package returns

import "github.com/shopspring/decimal"

// Multiples are capital multiples of an investment. Nil means undefined.
type Multiples struct {
	Residual        decimal.Decimal
	ResidualAssumed bool
	MOIC            *float64
	DPI             *float64
	RVPI            *float64
	TVPI            *float64
}

// DefaultResidual assumes unreturned capital is still worth cost.
func DefaultResidual(called, distributions decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, called.Sub(distributions))
}

// ComputeMultiples derives MOIC, DPI, RVPI and TVPI. A nil residual is
// replaced by DefaultResidual and flagged as assumed. TVPI equals MOIC.
func ComputeMultiples(called, distributions decimal.Decimal, residual *decimal.Decimal) Multiples {
	m := Multiples{}

	if residual != nil {
		m.Residual = *residual
	} else {
		m.Residual = DefaultResidual(called, distributions)
		m.ResidualAssumed = true
	}

	if called.LessThanOrEqual(decimal.Zero) {
		return m
	}

	c := called.InexactFloat64()
	moic := distributions.Add(m.Residual).InexactFloat64() / c
	dpi := distributions.InexactFloat64() / c
	rvpi := m.Residual.InexactFloat64() / c
	tvpi := moic

	m.DPI = &dpi
	m.RVPI = &rvpi
	m.MOIC = &moic
	m.TVPI = &tvpi

	return m
}
