package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors
var (
	ErrInvalidCurrency       = errors.New("invalid currency code")
	ErrInvalidRate           = errors.New("exchange rate must be positive")
	ErrInvalidDate           = errors.New("invalid date")
	ErrUnknownDirectionality = errors.New("unknown directionality rule")
	ErrInvalidIdentifier     = errors.New("invalid investment identifier")
)

// Validation constants
const (
	MaxIdentifierLength = 255
	MaxPageSize         = 1000
	DefaultPageSize     = 50
)

// ValidateCurrency validates a three-letter currency code.
func ValidateCurrency(currency string) error {
	if len(currency) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}

	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
		}
	}

	return nil
}

// ValidateIdentifier validates an investment identifier.
func ValidateIdentifier(identifier string) error {
	identifier = strings.TrimSpace(identifier)

	if identifier == "" {
		return fmt.Errorf("%w: identifier cannot be empty", ErrInvalidIdentifier)
	}

	if len(identifier) > MaxIdentifierLength {
		return fmt.Errorf("%w: identifier exceeds %d characters", ErrInvalidIdentifier, MaxIdentifierLength)
	}

	return nil
}

// ParseISODate parses a YYYY-MM-DD date into UTC midnight.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return t.UTC(), nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
