package rateprovider

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
)

// Provider names accepted in configuration.
const (
	Frankfurter     = "frankfurter"
	ExchangeRateAPI = "exchangerate-api"
	CurrencyAPI     = "currencyapi"
)

// NewFrankfurter returns the keyless ECB reference-rate provider.
func NewFrankfurter(opts Options) *HTTPProvider {
	return newHTTPProvider(Frankfurter, false,
		func(base, _ string, date time.Time, from, to string) string {
			q := url.Values{"from": {from}, "to": {to}}
			return fmt.Sprintf("%s/%s?%s", base, date.Format(domain.DateLayout), q.Encode())
		},
		func(_, to string) string { return "$.rates." + to },
		"https://api.frankfurter.app", opts)
}

// NewExchangeRateAPI returns the exchangerate-api.com historical provider.
func NewExchangeRateAPI(opts Options) *HTTPProvider {
	return newHTTPProvider(ExchangeRateAPI, true,
		func(base, key string, date time.Time, from, _ string) string {
			return fmt.Sprintf("%s/v6/%s/history/%s/%d/%d/%d",
				base, url.PathEscape(key), from, date.Year(), int(date.Month()), date.Day())
		},
		func(_, to string) string { return "$.conversion_rates." + to },
		"https://v6.exchangerate-api.com", opts)
}

// NewCurrencyAPI returns the currencyapi.com historical provider.
func NewCurrencyAPI(opts Options) *HTTPProvider {
	return newHTTPProvider(CurrencyAPI, true,
		func(base, key string, date time.Time, from, to string) string {
			q := url.Values{
				"apikey":        {key},
				"date":          {date.Format(domain.DateLayout)},
				"base_currency": {from},
				"currencies":    {to},
			}
			return fmt.Sprintf("%s/v3/historical?%s", base, q.Encode())
		},
		func(_, to string) string { return "$.data." + to + ".value" },
		"https://api.currencyapi.com", opts)
}

// Config selects and configures the provider chain.
type Config struct {
	Names              []string
	Timeout            time.Duration
	RPS                float64
	ExchangeRateAPIKey string
	CurrencyAPIKey     string
}

// Chain builds providers in the configured order.
func Chain(cfg Config) ([]usecase.RateProvider, error) {
	providers := make([]usecase.RateProvider, 0, len(cfg.Names))

	for _, raw := range cfg.Names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}

		opts := Options{Timeout: cfg.Timeout, RPS: cfg.RPS}

		switch name {
		case Frankfurter:
			providers = append(providers, NewFrankfurter(opts))
		case ExchangeRateAPI:
			opts.APIKey = cfg.ExchangeRateAPIKey
			providers = append(providers, NewExchangeRateAPI(opts))
		case CurrencyAPI:
			opts.APIKey = cfg.CurrencyAPIKey
			providers = append(providers, NewCurrencyAPI(opts))
		default:
			return nil, fmt.Errorf("unknown rate provider %q", raw)
		}
	}

	return providers, nil
}
