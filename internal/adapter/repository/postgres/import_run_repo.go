package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
)

// ImportRunRepository implements usecase.ImportRunRepository.
type ImportRunRepository struct {
	queries *generated.Queries
}

// NewImportRunRepository creates a new ImportRunRepository.
func NewImportRunRepository(pool *pgxpool.Pool) *ImportRunRepository {
	return newImportRunRepositoryWithPool(pool)
}

func newImportRunRepositoryWithPool(pool pgxPool) *ImportRunRepository {
	return &ImportRunRepository{queries: generated.New(pool)}
}

// Create records an import run.
func (r *ImportRunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	return r.queries.CreateImportRun(ctx, generated.CreateImportRunParams{
		ID:             run.ID,
		Source:         run.Source,
		SkipDuplicates: run.Options.SkipDuplicates,
		ForceImport:    run.Options.ForceImport,
		Total:          int32(run.Total),
		Imported:       int32(run.Imported),
		Skipped:        int32(run.Skipped),
		Failed:         int32(run.Failed),
		StartedAt:      timeToPgTimestamptz(run.StartedAt),
		FinishedAt:     timeToPgTimestamptz(run.FinishedAt),
	})
}

// GetByID retrieves an import run.
func (r *ImportRunRepository) GetByID(ctx context.Context, id string) (*domain.ImportRun, error) {
	row, err := r.queries.GetImportRun(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrImportRunNotFound
		}

		return nil, err
	}

	return rowToImportRun(row), nil
}

// List lists import runs, most recent first.
func (r *ImportRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.ImportRun, error) {
	rows, err := r.queries.ListImportRuns(ctx, generated.ListImportRunsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ImportRun, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToImportRun(row))
	}

	return out, nil
}

func rowToImportRun(row generated.ImportRun) *domain.ImportRun {
	return &domain.ImportRun{
		ID:     row.ID,
		Source: row.Source,
		Options: domain.ImportOptions{
			SkipDuplicates: row.SkipDuplicates,
			ForceImport:    row.ForceImport,
		},
		Total:      int(row.Total),
		Imported:   int(row.Imported),
		Skipped:    int(row.Skipped),
		Failed:     int(row.Failed),
		StartedAt:  row.StartedAt.Time,
		FinishedAt: row.FinishedAt.Time,
	}
}
