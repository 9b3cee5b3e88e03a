package domain

import "errors"

var (
	// Ledger errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvestmentNotFound  = errors.New("investment not found")
	ErrImportRunNotFound   = errors.New("import run not found")

	// Import errors
	ErrEmptyBatch    = errors.New("import batch is empty")
	ErrBatchTooLarge = errors.New("import batch exceeds maximum size")

	// Rate errors
	ErrRateNotFound        = errors.New("exchange rate not found")
	ErrRateLimited         = errors.New("rate provider rate-limited the request")
	ErrProviderUnavailable = errors.New("rate provider unavailable")
	ErrCredentialMissing   = errors.New("rate provider credential missing")

	// Analytics errors
	ErrNoCashFlows = errors.New("no cash flows for investment")
)
