package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource tells where a cached exchange rate came from.
type RateSource string

const (
	RateSourceAPI    RateSource = "api"
	RateSourceManual RateSource = "manual"
)

// RateKey identifies one cached conversion.
type RateKey struct {
	Date time.Time
	From string
	To   string
}

// String returns the key as DATE:FROM:TO.
func (k RateKey) String() string {
	return k.Date.Format(DateLayout) + ":" + k.From + ":" + k.To
}

// ExchangeRate is one rate cache entry.
type ExchangeRate struct {
	UpdatedAt time.Time
	Key       RateKey
	Rate      decimal.Decimal
	Source    RateSource
	Provider  string
}

// Validate checks that the rate is usable.
func (r *ExchangeRate) Validate() error {
	if r.Rate.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidRate
	}

	if err := ValidateCurrency(r.Key.From); err != nil {
		return err
	}

	return ValidateCurrency(r.Key.To)
}
