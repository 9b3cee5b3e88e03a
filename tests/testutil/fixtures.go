package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/postgres"
	"github.com/iho/fundledger/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB migrates and connects to DATABASE_URL, skipping the test when
// it is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	// Tests run from the package directory, so walk up to the migrations.
	migrationsPath := "migrations"
	for _, candidate := range []string{"migrations", "../migrations", "../../migrations"} {
		if _, err := os.Stat(candidate); err == nil {
			migrationsPath = candidate
			break
		}
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE transactions CASCADE;
		TRUNCATE TABLE investments CASCADE;
		TRUNCATE TABLE exchange_rates CASCADE;
		TRUNCATE TABLE import_runs CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CountTransactions returns the number of ledger rows.
func (db *TestDB) CountTransactions(ctx context.Context) int {
	db.t.Helper()

	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		db.t.Fatalf("failed to count transactions: %v", err)
	}

	return n
}

// CreateTestRate stores an API-sourced rate.
func (db *TestDB) CreateTestRate(ctx context.Context, date, from, to string, rate decimal.Decimal) {
	db.t.Helper()

	d, err := domain.ParseISODate(date)
	if err != nil {
		db.t.Fatalf("invalid rate date %q: %v", date, err)
	}

	var numeric pgtype.Numeric
	if err := numeric.Scan(rate.String()); err != nil {
		db.t.Fatalf("invalid rate %s: %v", rate, err)
	}

	err = db.Queries.UpsertExchangeRate(ctx, generated.UpsertExchangeRateParams{
		RateDate:     pgtype.Date{Time: d, Valid: true},
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         numeric,
		Source:       string(domain.RateSourceAPI),
		Provider:     "fixture",
		UpdatedAt:    pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	if err != nil {
		db.t.Fatalf("failed to create test rate: %v", err)
	}
}

// USDRecord builds a normalized USD record that needs no conversion.
func USDRecord(date string, amount int64, investment string) *domain.NormalizedTransaction {
	d, _ := domain.ParseISODate(date)
	amt := decimal.NewFromInt(amount)

	direction := domain.DirectionInflow
	if amount < 0 {
		direction = domain.DirectionOutflow
	}

	return &domain.NormalizedTransaction{
		Date:                 &d,
		AmountOriginal:       decimal.NewNullDecimal(amt.Abs()),
		AmountNormalized:     decimal.NewNullDecimal(amt),
		OriginalCurrency:     "USD",
		AmountUSD:            decimal.NewNullDecimal(amt),
		TransactionType:      "Adjustment",
		Category:             "adjustment",
		Direction:            direction,
		InvestmentIdentifier: investment,
		SourceRow:            map[string]any{"Date": date, "Amount": amt.String()},
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
