package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
)

// InvestmentRepository implements usecase.InvestmentRepository.
type InvestmentRepository struct {
	queries *generated.Queries
}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository(pool *pgxpool.Pool) *InvestmentRepository {
	return newInvestmentRepositoryWithPool(pool)
}

func newInvestmentRepositoryWithPool(pool pgxPool) *InvestmentRepository {
	return &InvestmentRepository{queries: generated.New(pool)}
}

// EnsureExists inserts the investment unless its identifier is already known.
func (r *InvestmentRepository) EnsureExists(ctx context.Context, investment *domain.Investment) error {
	return r.queries.UpsertInvestment(ctx, generated.UpsertInvestmentParams{
		Identifier: investment.Identifier,
		Name:       investment.Name,
		CreatedAt:  timeToPgTimestamptz(investment.CreatedAt),
	})
}

// GetByIdentifier retrieves an investment.
func (r *InvestmentRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Investment, error) {
	row, err := r.queries.GetInvestment(ctx, identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestmentNotFound
		}

		return nil, err
	}

	return rowToInvestment(row), nil
}

// List lists investments by identifier.
func (r *InvestmentRepository) List(ctx context.Context, limit, offset int) ([]*domain.Investment, error) {
	rows, err := r.queries.ListInvestments(ctx, generated.ListInvestmentsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Investment, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToInvestment(row))
	}

	return out, nil
}

func rowToInvestment(row generated.Investment) *domain.Investment {
	return &domain.Investment{
		Identifier: row.Identifier,
		Name:       row.Name,
		CreatedAt:  row.CreatedAt.Time,
	}
}
