package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// FakeLedgerRepository is an in-memory LedgerRepository that enforces
// fingerprint uniqueness the way the database index does.
type FakeLedgerRepository struct {
	mu            sync.RWMutex
	rows          map[string]*domain.LedgerTransaction
	byFingerprint map[string]string

	InsertIfAbsentFunc   func(ctx context.Context, tx *domain.LedgerTransaction) (bool, string, error)
	GetByFingerprintFunc func(ctx context.Context, fingerprint string) (*domain.LedgerTransaction, error)
	FindCandidatesFunc   func(ctx context.Context, identifier string, from, to time.Time) ([]*domain.LedgerTransaction, error)
	ListForAnalyticsFunc func(ctx context.Context, identifier string) ([]*domain.LedgerTransaction, error)
}

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{
		rows:          make(map[string]*domain.LedgerTransaction),
		byFingerprint: make(map[string]string),
	}
}

func (m *FakeLedgerRepository) InsertIfAbsent(ctx context.Context, tx *domain.LedgerTransaction) (bool, string, error) {
	if m.InsertIfAbsentFunc != nil {
		return m.InsertIfAbsentFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.Fingerprint != nil {
		if id, ok := m.byFingerprint[*tx.Fingerprint]; ok {
			return false, id, nil
		}
		m.byFingerprint[*tx.Fingerprint] = tx.ID
	}
	m.rows[tx.ID] = tx
	return true, "", nil
}

func (m *FakeLedgerRepository) GetByID(ctx context.Context, id string) (*domain.LedgerTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tx, ok := m.rows[id]; ok {
		return tx, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *FakeLedgerRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.LedgerTransaction, error) {
	if m.GetByFingerprintFunc != nil {
		return m.GetByFingerprintFunc(ctx, fingerprint)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byFingerprint[fingerprint]; ok {
		return m.rows[id], nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *FakeLedgerRepository) FindCandidates(ctx context.Context, identifier string, from, to time.Time) ([]*domain.LedgerTransaction, error) {
	if m.FindCandidatesFunc != nil {
		return m.FindCandidatesFunc(ctx, identifier, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerTransaction
	for _, tx := range m.rows {
		if tx.InvestmentIdentifier != identifier || tx.Date == nil {
			continue
		}
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	sortByID(out)
	return out, nil
}

func (m *FakeLedgerRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.LedgerTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerTransaction
	for _, tx := range m.rows {
		if filter.InvestmentIdentifier != "" && tx.InvestmentIdentifier != filter.InvestmentIdentifier {
			continue
		}
		out = append(out, tx)
	}
	sortByID(out)
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *FakeLedgerRepository) ListForAnalytics(ctx context.Context, identifier string) ([]*domain.LedgerTransaction, error) {
	if m.ListForAnalyticsFunc != nil {
		return m.ListForAnalyticsFunc(ctx, identifier)
	}
	return m.List(ctx, domain.TransactionFilter{InvestmentIdentifier: identifier})
}

// Count returns the number of stored rows.
func (m *FakeLedgerRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Seed stores rows directly, bypassing the uniqueness check.
func (m *FakeLedgerRepository) Seed(rows ...*domain.LedgerTransaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range rows {
		m.rows[tx.ID] = tx
		if tx.Fingerprint != nil {
			m.byFingerprint[*tx.Fingerprint] = tx.ID
		}
	}
}

func sortByID(rows []*domain.LedgerTransaction) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
}

// FakeInvestmentRepository is an in-memory InvestmentRepository.
type FakeInvestmentRepository struct {
	mu          sync.RWMutex
	investments map[string]*domain.Investment

	EnsureExistsFunc func(ctx context.Context, investment *domain.Investment) error
}

func NewFakeInvestmentRepository() *FakeInvestmentRepository {
	return &FakeInvestmentRepository{investments: make(map[string]*domain.Investment)}
}

func (m *FakeInvestmentRepository) EnsureExists(ctx context.Context, investment *domain.Investment) error {
	if m.EnsureExistsFunc != nil {
		return m.EnsureExistsFunc(ctx, investment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.investments[investment.Identifier]; !ok {
		m.investments[investment.Identifier] = investment
	}
	return nil
}

func (m *FakeInvestmentRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if inv, ok := m.investments[identifier]; ok {
		return inv, nil
	}
	return nil, domain.ErrInvestmentNotFound
}

func (m *FakeInvestmentRepository) List(ctx context.Context, limit, offset int) ([]*domain.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Investment, 0, len(m.investments))
	for _, inv := range m.investments {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// FakeImportRunRepository is an in-memory ImportRunRepository.
type FakeImportRunRepository struct {
	mu   sync.RWMutex
	runs []*domain.ImportRun

	CreateFunc func(ctx context.Context, run *domain.ImportRun) error
}

func NewFakeImportRunRepository() *FakeImportRunRepository {
	return &FakeImportRunRepository{}
}

func (m *FakeImportRunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *FakeImportRunRepository) GetByID(ctx context.Context, id string) (*domain.ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrImportRunNotFound
}

func (m *FakeImportRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.ImportRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset >= len(m.runs) {
		return nil, nil
	}
	out := append([]*domain.ImportRun(nil), m.runs[offset:]...)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// FakeRateRepository is an in-memory RateRepository.
type FakeRateRepository struct {
	mu    sync.RWMutex
	rates map[string]*domain.ExchangeRate

	GetFunc func(ctx context.Context, key domain.RateKey) (*domain.ExchangeRate, error)
}

func NewFakeRateRepository() *FakeRateRepository {
	return &FakeRateRepository{rates: make(map[string]*domain.ExchangeRate)}
}

func (m *FakeRateRepository) Get(ctx context.Context, key domain.RateKey) (*domain.ExchangeRate, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rates[key.String()]; ok {
		return r, nil
	}
	return nil, domain.ErrRateNotFound
}

func (m *FakeRateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[rate.Key.String()] = rate
	return nil
}

// FakeIDGenerator returns sequential IDs.
type FakeIDGenerator struct {
	prefix string
	n      atomic.Int64
}

func NewFakeIDGenerator(prefix string) *FakeIDGenerator {
	return &FakeIDGenerator{prefix: prefix}
}

func (m *FakeIDGenerator) Generate() string {
	return fmt.Sprintf("%s%06d", m.prefix, m.n.Add(1))
}

// FakeRateLookup resolves rates from a fixed currency table.
type FakeRateLookup struct {
	Rates map[string]decimal.Decimal
	Err   error
}

func (m *FakeRateLookup) Rate(ctx context.Context, date time.Time, from, to string) (decimal.NullDecimal, error) {
	if m.Err != nil {
		return decimal.NullDecimal{}, m.Err
	}
	if from == to {
		return decimal.NewNullDecimal(decimal.NewFromInt(1)), nil
	}
	if r, ok := m.Rates[from]; ok {
		return decimal.NewNullDecimal(r), nil
	}
	return decimal.NullDecimal{}, nil
}
