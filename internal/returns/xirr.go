// Package returns computes private-investment return metrics from cash flows.
package returns

import (
	"math"
	"sort"

	"github.com/iho/fundledger/internal/domain"
)

const (
	daysPerYear = 365.0

	DefaultGuess         = 0.1
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-7
)

// SolverConfig tunes the Newton-Raphson iteration.
type SolverConfig struct {
	Guess         float64
	MaxIterations int
	Tolerance     float64
}

// DefaultSolverConfig returns the default iteration settings.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Guess:         DefaultGuess,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// XIRR returns the annualized rate r with Σ amount_i / (1+r)^(days_i/365) = 0.
// It returns nil for fewer than two flows, a single-sign series, or when the
// iteration does not converge.
func XIRR(flows []domain.CashFlow, cfg SolverConfig) *float64 {
	if len(flows) < 2 {
		return nil
	}

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}

	sorted := make([]domain.CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	amounts := make([]float64, len(sorted))
	years := make([]float64, len(sorted))

	hasPositive, hasNegative := false, false
	start := sorted[0].Date

	for i, f := range sorted {
		amounts[i] = f.Amount.InexactFloat64()
		years[i] = f.Date.Sub(start).Hours() / 24 / daysPerYear

		switch {
		case amounts[i] > 0:
			hasPositive = true
		case amounts[i] < 0:
			hasNegative = true
		}
	}

	if !hasPositive || !hasNegative {
		return nil
	}

	rate, ok := newton(amounts, years, cfg)
	if !ok {
		return nil
	}

	return &rate
}

func newton(amounts, years []float64, cfg SolverConfig) (float64, bool) {
	r := cfg.Guess

	for i := 0; i < cfg.MaxIterations; i++ {
		if r <= -1 {
			r = -0.999999
		}

		npv, dnpv := 0.0, 0.0
		for k, a := range amounts {
			base := math.Pow(1+r, years[k])
			npv += a / base
			dnpv -= years[k] * a / (base * (1 + r))
		}

		if dnpv == 0 || math.IsNaN(dnpv) || math.IsInf(dnpv, 0) {
			return 0, false
		}

		next := r - npv/dnpv
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}

		if math.Abs(next-r) < cfg.Tolerance {
			return next, true
		}

		r = next
	}

	return 0, false
}
