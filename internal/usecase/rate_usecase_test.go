package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/usecase"
	"github.com/iho/fundledger/internal/usecase/mocks"
)

var rateDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func newProvider(ctrl *gomock.Controller, name string, enabled bool) *mocks.MockRateProvider {
	p := mocks.NewMockRateProvider(ctrl)
	p.EXPECT().Name().Return(name).AnyTimes()
	p.EXPECT().Enabled().Return(enabled).AnyTimes()
	return p
}

func TestRateService_SameCurrencyNeedsNoLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRateRepository(ctrl)
	provider := newProvider(ctrl, "frankfurter", true)

	svc := usecase.NewRateService(usecase.RateServiceConfig{
		Repo:      repo,
		Providers: []usecase.RateProvider{provider},
		Logger:    zerolog.Nop(),
	})

	rate, err := svc.Rate(context.Background(), rateDate, "usd", "USD")
	require.NoError(t, err)
	require.True(t, rate.Valid)
	assert.True(t, rate.Decimal.Equal(decimal.NewFromInt(1)))
}

func TestRateService_StoreHitSkipsProviders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRateRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), domain.RateKey{Date: rateDate, From: "ILS", To: "USD"}).Return(&domain.ExchangeRate{
		Key:    domain.RateKey{Date: rateDate, From: "ILS", To: "USD"},
		Rate:   decimal.RequireFromString("0.27"),
		Source: domain.RateSourceAPI,
	}, nil).Times(1)

	svc := usecase.NewRateService(usecase.RateServiceConfig{
		Repo:      repo,
		Providers: []usecase.RateProvider{newProvider(ctrl, "frankfurter", true)},
		Logger:    zerolog.Nop(),
	})

	for i := 0; i < 2; i++ {
		rate, err := svc.Rate(context.Background(), rateDate.Add(13*time.Hour), "ILS", "USD")
		require.NoError(t, err)
		assert.Equal(t, "0.27", rate.Decimal.String())
	}
}

func TestRateService_FallbackChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	key := domain.RateKey{Date: rateDate, From: "EUR", To: "USD"}

	repo := mocks.NewMockRateRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), key).Return(nil, domain.ErrRateNotFound)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *domain.ExchangeRate) error {
		assert.Equal(t, key, r.Key)
		assert.Equal(t, domain.RateSourceAPI, r.Source)
		assert.Equal(t, "currencyapi", r.Provider)
		assert.Equal(t, "1.09", r.Rate.String())
		return nil
	})

	limited := newProvider(ctrl, "frankfurter", true)
	limited.EXPECT().Fetch(gomock.Any(), rateDate, "EUR", "USD").Return(decimal.Zero, domain.ErrRateLimited)

	// no credential: must never be called
	keyless := newProvider(ctrl, "exchangerate-api", false)

	working := newProvider(ctrl, "currencyapi", true)
	working.EXPECT().Fetch(gomock.Any(), rateDate, "EUR", "USD").Return(decimal.RequireFromString("1.09"), nil)

	metrics := mocks.NewMockImportMetrics(ctrl)
	metrics.EXPECT().ProviderFailure("frankfurter", "rate_limited")
	metrics.EXPECT().RateLookup(usecase.TierProvider)

	svc := usecase.NewRateService(usecase.RateServiceConfig{
		Repo:      repo,
		Providers: []usecase.RateProvider{limited, keyless, working},
		Metrics:   metrics,
		Logger:    zerolog.Nop(),
	})

	rate, err := svc.Rate(context.Background(), rateDate, "EUR", "USD")
	require.NoError(t, err)
	require.True(t, rate.Valid)
	assert.Equal(t, "1.09", rate.Decimal.String())
}

func TestRateService_AllProvidersFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRateRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrRateNotFound)

	broken := newProvider(ctrl, "frankfurter", true)
	broken.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, errors.New("connection refused"))

	zero := newProvider(ctrl, "currencyapi", true)
	zero.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(decimal.Zero, nil)

	svc := usecase.NewRateService(usecase.RateServiceConfig{
		Repo:      repo,
		Providers: []usecase.RateProvider{broken, zero},
		Logger:    zerolog.Nop(),
	})

	rate, err := svc.Rate(context.Background(), rateDate, "GBP", "USD")
	require.NoError(t, err)
	assert.False(t, rate.Valid)
}

func TestRateService_StoreOutageIsAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRateRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	svc := usecase.NewRateService(usecase.RateServiceConfig{Repo: repo, Logger: zerolog.Nop()})

	_, err := svc.Rate(context.Background(), rateDate, "GBP", "USD")
	require.Error(t, err)
}

func TestRateService_SharedCacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockRateRepository(ctrl)

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "rate:2024-03-15:JPY:USD").
		Return([]byte(`{"rate":"0.0067","source":"api","provider":"frankfurter"}`), nil)

	svc := usecase.NewRateService(usecase.RateServiceConfig{Repo: repo, Shared: cache, Logger: zerolog.Nop()})

	rate, err := svc.Rate(context.Background(), rateDate, "JPY", "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.0067", rate.Decimal.String())
}

func TestRateService_ManualOverride(t *testing.T) {
	repo := mocks.NewFakeRateRepository()
	require.NoError(t, repo.Upsert(context.Background(), &domain.ExchangeRate{
		Key:    domain.RateKey{Date: rateDate, From: "ILS", To: "USD"},
		Rate:   decimal.RequireFromString("0.27"),
		Source: domain.RateSourceAPI,
	}))

	svc := usecase.NewRateService(usecase.RateServiceConfig{Repo: repo, Logger: zerolog.Nop()})

	rate, err := svc.Rate(context.Background(), rateDate, "ILS", "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.27", rate.Decimal.String())

	stored, err := svc.SetManualRate(context.Background(), rateDate, "ils", "usd", decimal.RequireFromString("0.275"))
	require.NoError(t, err)
	assert.Equal(t, domain.RateSourceManual, stored.Source)

	rate, err = svc.Rate(context.Background(), rateDate, "ILS", "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.275", rate.Decimal.String())

	got, err := svc.GetRate(context.Background(), rateDate, "ILS", "USD")
	require.NoError(t, err)
	assert.Equal(t, domain.RateSourceManual, got.Source)
}

func TestRateService_ManualOverrideSeenByOtherInstance(t *testing.T) {
	repo := mocks.NewFakeRateRepository()
	require.NoError(t, repo.Upsert(context.Background(), &domain.ExchangeRate{
		Key:    domain.RateKey{Date: rateDate, From: "ILS", To: "USD"},
		Rate:   decimal.RequireFromString("0.27"),
		Source: domain.RateSourceAPI,
	}))

	reader := usecase.NewRateService(usecase.RateServiceConfig{Repo: repo, Logger: zerolog.Nop()})
	writer := usecase.NewRateService(usecase.RateServiceConfig{Repo: repo, Logger: zerolog.Nop()})

	rate, err := reader.Rate(context.Background(), rateDate, "ILS", "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.27", rate.Decimal.String())

	_, err = writer.SetManualRate(context.Background(), rateDate, "ILS", "USD", decimal.RequireFromString("0.30"))
	require.NoError(t, err)

	rate, err = reader.Rate(context.Background(), rateDate, "ILS", "USD")
	require.NoError(t, err)
	assert.Equal(t, "0.3", rate.Decimal.String())
}

func TestRateService_RecentMissSkipsProviders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewFakeRateRepository()

	provider := newProvider(ctrl, "frankfurter", true)
	provider.EXPECT().Fetch(gomock.Any(), gomock.Any(), "XAF", "USD").Return(decimal.Zero, errors.New("unsupported currency")).Times(1)

	svc := usecase.NewRateService(usecase.RateServiceConfig{
		Repo:      repo,
		Providers: []usecase.RateProvider{provider},
		Logger:    zerolog.Nop(),
	})

	for i := 0; i < 3; i++ {
		rate, err := svc.Rate(context.Background(), rateDate, "XAF", "USD")
		require.NoError(t, err)
		assert.False(t, rate.Valid)
	}

	other := usecase.NewRateService(usecase.RateServiceConfig{Repo: repo, Logger: zerolog.Nop()})
	_, err := other.SetManualRate(context.Background(), rateDate, "XAF", "USD", decimal.RequireFromString("0.0016"))
	require.NoError(t, err)

	rate, err := svc.Rate(context.Background(), rateDate, "XAF", "USD")
	require.NoError(t, err)
	require.True(t, rate.Valid)
	assert.Equal(t, "0.0016", rate.Decimal.String())
}

func TestRateService_ManualRateValidation(t *testing.T) {
	svc := usecase.NewRateService(usecase.RateServiceConfig{Repo: mocks.NewFakeRateRepository(), Logger: zerolog.Nop()})

	_, err := svc.SetManualRate(context.Background(), rateDate, "ILS", "USD", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.SetManualRate(context.Background(), rateDate, "SHEKEL", "USD", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}
