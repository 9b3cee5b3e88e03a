package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// LedgerRepository defines data access for imported transactions.
type LedgerRepository interface {
	// InsertIfAbsent inserts tx unless a row with the same fingerprint exists.
	// It returns inserted=false and the existing row ID on conflict.
	InsertIfAbsent(ctx context.Context, tx *domain.LedgerTransaction) (inserted bool, existingID string, err error)
	GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*domain.LedgerTransaction, error)
	FindCandidates(ctx context.Context, identifier string, from, to time.Time) ([]*domain.LedgerTransaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error)
	ListForAnalytics(ctx context.Context, identifier string) ([]*domain.LedgerTransaction, error)
}

// InvestmentRepository defines data access for investments.
type InvestmentRepository interface {
	EnsureExists(ctx context.Context, investment *domain.Investment) error
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Investment, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Investment, error)
}

// RateRepository is the durable exchange-rate cache.
type RateRepository interface {
	// Get returns domain.ErrRateNotFound on a miss.
	Get(ctx context.Context, key domain.RateKey) (*domain.ExchangeRate, error)
	// Upsert writes the rate; the last write for a key wins.
	Upsert(ctx context.Context, rate *domain.ExchangeRate) error
}

// ImportRunRepository defines data access for import audit records.
type ImportRunRepository interface {
	Create(ctx context.Context, run *domain.ImportRun) error
	GetByID(ctx context.Context, id string) (*domain.ImportRun, error)
	List(ctx context.Context, limit, offset int) ([]*domain.ImportRun, error)
}

// RateProvider fetches a rate from an external service.
type RateProvider interface {
	Name() string
	// Enabled reports whether the provider has the credential it needs.
	Enabled() bool
	Fetch(ctx context.Context, date time.Time, from, to string) (decimal.Decimal, error)
}

// RateLookup resolves a conversion rate; an invalid result means unresolved.
type RateLookup interface {
	Rate(ctx context.Context, date time.Time, from, to string) (decimal.NullDecimal, error)
}

// IdentityResolver turns a raw investment name into a ledger identifier.
type IdentityResolver interface {
	Resolve(raw string) string
}

// Retrier retries operations that failed with transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyPending is the stored value of a key whose request is in flight.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// ImportMetrics records import and rate-lookup telemetry.
type ImportMetrics interface {
	ObserveImport(summary *domain.ImportSummary, duration time.Duration)
	RateLookup(tier string)
	ProviderFailure(provider, reason string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveImport(*domain.ImportSummary, time.Duration) {}
func (noopMetrics) RateLookup(string)                                  {}
func (noopMetrics) ProviderFailure(string, string)                     {}
