package parser

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	digitsAndSeparators = regexp.MustCompile(`^[0-9.,]*[0-9][0-9.,]*$`)
	scientific          = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?[eE][+\-]?[0-9]+$`)
	leadingCode         = regexp.MustCompile(`^[A-Za-z]{3}\s*`)
	trailingCode        = regexp.MustCompile(`\s*[A-Za-z]{3}$`)
)

var amountNoise = strings.NewReplacer(
	" ", "",
	"\t", "",
	"\u00a0", "",
	"\u202f", "",
	"'", "",
	"US$", "",
	"’", "",
	"$", "",
	"€", "",
	"₪", "",
	"£", "",
	"¥", "",
)

// ParseAmount parses a cell into a decimal amount.
//
// Thousands separators and whitespace are stripped, a value wrapped in
// parentheses is negative, and either comma or dot may be the decimal mark.
// The result is invalid for anything non-numeric; it is never silently zero.
func ParseAmount(value any) decimal.NullDecimal {
	switch v := value.(type) {
	case nil:
		return decimal.NullDecimal{}
	case decimal.Decimal:
		return decimal.NewNullDecimal(v)
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(v)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(v))
	case json.Number:
		return parseAmountString(string(v))
	case string:
		return parseAmountString(v)
	default:
		return decimal.NullDecimal{}
	}
}

func fromFloat(f float64) decimal.NullDecimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

func parseAmountString(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.NullDecimal{}
	}

	negative := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = stripCurrencyCode(s, leadingCode)
	s = stripCurrencyCode(s, trailingCode)
	s = strings.ReplaceAll(s, "−", "-")
	s = amountNoise.Replace(s)

	s, flipped := stripSigns(s)
	if flipped {
		negative = !negative
	}

	var d decimal.Decimal

	switch {
	case scientific.MatchString(s):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return decimal.NullDecimal{}
		}
		d = decimal.NewFromFloat(f)
	case digitsAndSeparators.MatchString(s):
		plain, ok := normalizeSeparators(s)
		if !ok {
			return decimal.NullDecimal{}
		}

		var err error
		d, err = decimal.NewFromString(plain)
		if err != nil {
			return decimal.NullDecimal{}
		}
	default:
		return decimal.NullDecimal{}
	}

	if negative {
		d = d.Neg()
	}

	return decimal.NewNullDecimal(d)
}

// stripCurrencyCode removes the three-letter token matched by re when it is
// an ISO currency code. Any other word is left so the cell fails to parse.
func stripCurrencyCode(s string, re *regexp.Regexp) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}

	if !IsKnownCurrency(strings.ToUpper(strings.TrimSpace(s[loc[0]:loc[1]]))) {
		return s
	}

	return s[:loc[0]] + s[loc[1]:]
}

// normalizeSeparators rewrites a number so that "." is the only decimal
// mark and thousands separators are gone.
//
// With both marks present, the last one is the decimal mark. A lone comma
// followed by exactly three digits is a thousands separator, otherwise a
// decimal mark. Repeated identical marks are thousands separators.
func normalizeSeparators(s string) (string, bool) {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		lastComma := strings.LastIndex(s, ",")
		lastDot := strings.LastIndex(s, ".")

		if lastComma > lastDot {
			return dropThenDecimal(s, ".", ",")
		}

		return dropThenDecimal(s, ",", ".")
	case commas > 1:
		return strings.ReplaceAll(s, ",", ""), true
	case commas == 1:
		i := strings.Index(s, ",")
		if len(s)-i-1 == 3 && i > 0 {
			return strings.ReplaceAll(s, ",", ""), true
		}
		return strings.Replace(s, ",", ".", 1), true
	case dots > 1:
		return strings.ReplaceAll(s, ".", ""), true
	default:
		return s, true
	}
}

// dropThenDecimal removes every thousands mark and turns the decimal mark into ".".
func dropThenDecimal(s, thousands, dec string) (string, bool) {
	if strings.Count(s, dec) > 1 {
		return "", false
	}

	s = strings.ReplaceAll(s, thousands, "")

	return strings.Replace(s, dec, ".", 1), true
}

// stripSigns removes leading and trailing sign characters. flipped reports
// an odd number of minus signs.
func stripSigns(s string) (string, bool) {
	flipped := false

	for {
		switch {
		case strings.HasPrefix(s, "-"):
			flipped = !flipped
			s = s[1:]
		case strings.HasSuffix(s, "-"):
			flipped = !flipped
			s = s[:len(s)-1]
		case strings.HasPrefix(s, "+"):
			s = s[1:]
		default:
			return s, flipped
		}
	}
}
