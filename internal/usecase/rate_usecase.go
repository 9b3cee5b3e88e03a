package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/parser"
)

// Rate lookup tiers reported to metrics.
const (
	TierIdentity   = "identity"
	TierShared     = "shared"
	TierStore      = "store"
	TierProvider   = "provider"
	TierMiss       = "miss"
	TierRecentMiss = "recent_miss"
)

// RateService resolves (date, from, to) conversion rates.
//
// Lookups go through an optional shared cache, the durable rate store, and
// finally the provider chain in order. Successful fetches are written back
// with source "api". Found rates are never held in process memory, so a
// manual override written by any instance wins on the next lookup. Only
// keys that no provider could resolve are remembered locally, which keeps a
// batch in an unsupported currency from calling the providers once per row.
type RateService struct {
	repo      RateRepository
	shared    Cache
	misses    *gocache.Cache
	providers []RateProvider
	metrics   ImportMetrics
	logger    zerolog.Logger
	sharedTTL time.Duration
}

// RateServiceConfig holds RateService dependencies.
type RateServiceConfig struct {
	Repo      RateRepository
	Shared    Cache
	Providers []RateProvider
	Metrics   ImportMetrics
	Logger    zerolog.Logger
	MissTTL   time.Duration
	SharedTTL time.Duration
}

// NewRateService creates a new RateService.
func NewRateService(cfg RateServiceConfig) *RateService {
	if cfg.MissTTL <= 0 {
		cfg.MissTTL = DefaultRateMissTTL
	}

	if cfg.SharedTTL <= 0 {
		cfg.SharedTTL = DefaultRateCacheTTL
	}

	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}

	return &RateService{
		repo:      cfg.Repo,
		shared:    cfg.Shared,
		misses:    gocache.New(cfg.MissTTL, 2*cfg.MissTTL),
		providers: cfg.Providers,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		sharedTTL: cfg.SharedTTL,
	}
}

// Rate returns the rate converting one unit of from into to on date.
// An invalid result means no tier could resolve it; err is reserved for
// rate-store outages.
func (s *RateService) Rate(ctx context.Context, date time.Time, from, to string) (decimal.NullDecimal, error) {
	key := newRateKey(date, from, to)

	if key.From == key.To {
		s.metrics.RateLookup(TierIdentity)
		return decimal.NewNullDecimal(decimal.NewFromInt(1)), nil
	}

	if r := s.getShared(ctx, key); r != nil {
		s.metrics.RateLookup(TierShared)
		return decimal.NewNullDecimal(r.Rate), nil
	}

	stored, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		s.metrics.RateLookup(TierStore)
		s.remember(ctx, stored)
		return decimal.NewNullDecimal(stored.Rate), nil
	case !errors.Is(err, domain.ErrRateNotFound):
		return decimal.NullDecimal{}, fmt.Errorf("failed to read rate %s: %w", key, err)
	}

	if _, ok := s.misses.Get(key.String()); ok {
		s.metrics.RateLookup(TierRecentMiss)
		return decimal.NullDecimal{}, nil
	}

	fetched := s.fetch(ctx, key)
	if fetched == nil {
		s.metrics.RateLookup(TierMiss)
		s.misses.SetDefault(key.String(), struct{}{})
		s.logger.Warn().Str("key", key.String()).Msg("exchange rate unavailable from every provider")
		return decimal.NullDecimal{}, nil
	}

	s.metrics.RateLookup(TierProvider)

	if err := s.repo.Upsert(ctx, fetched); err != nil {
		s.logger.Error().Err(err).Str("key", key.String()).Msg("failed to persist fetched exchange rate")
	}

	s.remember(ctx, fetched)

	return decimal.NewNullDecimal(fetched.Rate), nil
}

// SetManualRate stores an operator-supplied rate. It replaces any earlier
// entry for the same key in every tier.
func (s *RateService) SetManualRate(ctx context.Context, date time.Time, from, to string, rate decimal.Decimal) (*domain.ExchangeRate, error) {
	r := &domain.ExchangeRate{
		Key:       newRateKey(date, from, to),
		Rate:      rate,
		Source:    domain.RateSourceManual,
		Provider:  string(domain.RateSourceManual),
		UpdatedAt: time.Now().UTC(),
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to store manual rate: %w", err)
	}

	s.remember(ctx, r)

	return r, nil
}

// GetRate returns the stored cache entry for a key, without fetching.
func (s *RateService) GetRate(ctx context.Context, date time.Time, from, to string) (*domain.ExchangeRate, error) {
	return s.repo.Get(ctx, newRateKey(date, from, to))
}

func (s *RateService) fetch(ctx context.Context, key domain.RateKey) *domain.ExchangeRate {
	for _, p := range s.providers {
		if !p.Enabled() {
			s.logger.Debug().Str("provider", p.Name()).Msg("skipping rate provider without credential")
			continue
		}

		rate, err := p.Fetch(ctx, key.Date, key.From, key.To)
		if err == nil && !rate.IsPositive() {
			err = fmt.Errorf("%w: non-positive rate %s", domain.ErrProviderUnavailable, rate)
		}

		if err != nil {
			reason := "error"
			if errors.Is(err, domain.ErrRateLimited) {
				reason = "rate_limited"
			}

			s.metrics.ProviderFailure(p.Name(), reason)
			s.logger.Warn().Err(err).Str("provider", p.Name()).Str("key", key.String()).Msg("rate provider failed, trying next")

			continue
		}

		return &domain.ExchangeRate{
			Key:       key,
			Rate:      rate,
			Source:    domain.RateSourceAPI,
			Provider:  p.Name(),
			UpdatedAt: time.Now().UTC(),
		}
	}

	return nil
}

type sharedRate struct {
	Rate     decimal.Decimal   `json:"rate"`
	Source   domain.RateSource `json:"source"`
	Provider string            `json:"provider"`
}

func (s *RateService) getShared(ctx context.Context, key domain.RateKey) *domain.ExchangeRate {
	if s.shared == nil {
		return nil
	}

	raw, err := s.shared.Get(ctx, sharedRateKey(key))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key.String()).Msg("shared rate cache read failed")
		}
		return nil
	}

	var v sharedRate
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	return &domain.ExchangeRate{Key: key, Rate: v.Rate, Source: v.Source, Provider: v.Provider}
}

// remember writes a rate into the shared cache and forgets any recorded miss.
func (s *RateService) remember(ctx context.Context, r *domain.ExchangeRate) {
	s.misses.Delete(r.Key.String())

	if s.shared == nil {
		return
	}

	raw, err := json.Marshal(sharedRate{Rate: r.Rate, Source: r.Source, Provider: r.Provider})
	if err != nil {
		return
	}

	if err := s.shared.Set(ctx, sharedRateKey(r.Key), raw, s.sharedTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", r.Key.String()).Msg("shared rate cache write failed")
	}
}

func sharedRateKey(key domain.RateKey) string {
	return "rate:" + key.String()
}

func newRateKey(date time.Time, from, to string) domain.RateKey {
	y, m, d := date.Date()

	return domain.RateKey{
		Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		From: parser.NormalizeCurrency(from),
		To:   parser.NormalizeCurrency(to),
	}
}
