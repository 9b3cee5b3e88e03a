package parser

import (
	"strings"

	"github.com/Rhymond/go-money"
)

var currencySymbols = map[string]string{
	"$":    "USD",
	"US$":  "USD",
	"€":    "EUR",
	"₪":    "ILS",
	"NIS":  "ILS",
	"שח":   "ILS",
	"ש\"ח": "ILS",
	"ש״ח":  "ILS",
	"£":    "GBP",
	"¥":    "JPY",
}

// NormalizeCurrency maps a currency symbol or code to an uppercase ISO-4217
// code. Unrecognized input is uppercased and returned unchanged.
func NormalizeCurrency(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if code, ok := currencySymbols[s]; ok {
		return code
	}

	upper := strings.ToUpper(s)
	if code, ok := currencySymbols[upper]; ok {
		return code
	}

	return upper
}

// IsKnownCurrency reports whether code is a known ISO-4217 code.
func IsKnownCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}

	return money.GetCurrency(code) != nil
}

// DetectCurrency finds a currency symbol or leading/trailing ISO code inside
// an amount cell such as "$1,200" or "1.200 EUR". It returns "" when none is
// present.
func DetectCurrency(amount string) string {
	s := strings.TrimSpace(amount)

	for _, sym := range []string{"US$", "$", "€", "₪", "£", "¥"} {
		if strings.Contains(s, sym) {
			return currencySymbols[sym]
		}
	}

	if m := leadingCode.FindString(s); m != "" {
		if code := strings.ToUpper(strings.TrimSpace(m)); IsKnownCurrency(code) {
			return code
		}
	}

	if m := trailingCode.FindString(s); m != "" {
		if code := strings.ToUpper(strings.TrimSpace(m)); IsKnownCurrency(code) {
			return code
		}
	}

	return ""
}
