package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashFlow is one dated, signed amount in an investor cash-flow series.
type CashFlow struct {
	Date   time.Time
	Amount decimal.Decimal
}

// ReturnMetrics summarizes performance of an investment or a portfolio.
// Nil ratio fields mean the metric is undefined for the series.
type ReturnMetrics struct {
	AsOf            time.Time
	Identifier      string
	Called          decimal.Decimal
	Distributions   decimal.Decimal
	Residual        decimal.Decimal
	ResidualAssumed bool
	XIRR            *float64
	MOIC            *float64
	DPI             *float64
	RVPI            *float64
	TVPI            *float64
	FlowCount       int
	ExcludedCount   int
}
