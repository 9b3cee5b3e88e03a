package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
)

// RateRepository implements usecase.RateRepository on the exchange_rates table.
type RateRepository struct {
	queries *generated.Queries
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return newRateRepositoryWithPool(pool)
}

func newRateRepositoryWithPool(pool pgxPool) *RateRepository {
	return &RateRepository{queries: generated.New(pool)}
}

// Get retrieves a cached rate.
func (r *RateRepository) Get(ctx context.Context, key domain.RateKey) (*domain.ExchangeRate, error) {
	row, err := r.queries.GetExchangeRate(ctx, generated.GetExchangeRateParams{
		RateDate:     timeToPgDate(key.Date),
		FromCurrency: key.From,
		ToCurrency:   key.To,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRateNotFound
		}

		return nil, err
	}

	return &domain.ExchangeRate{
		Key: domain.RateKey{
			Date: *pgDateToTimePtr(row.RateDate),
			From: row.FromCurrency,
			To:   row.ToCurrency,
		},
		Rate:      numericToDecimal(row.Rate),
		Source:    domain.RateSource(row.Source),
		Provider:  row.Provider,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

// Upsert writes a rate, replacing any entry for the same key.
func (r *RateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	return r.queries.UpsertExchangeRate(ctx, generated.UpsertExchangeRateParams{
		RateDate:     timeToPgDate(rate.Key.Date),
		FromCurrency: rate.Key.From,
		ToCurrency:   rate.Key.To,
		Rate:         decimalToNumeric(rate.Rate),
		Source:       string(rate.Source),
		Provider:     rate.Provider,
		UpdatedAt:    timeToPgTimestamptz(rate.UpdatedAt),
	})
}
