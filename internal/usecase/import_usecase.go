package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/fundledger/internal/domain"
)

// ImportUseCase runs normalized records through dedup gating into the ledger.
type ImportUseCase struct {
	ledgerRepo     LedgerRepository
	investmentRepo InvestmentRepository
	runRepo        ImportRunRepository
	dedup          *DedupUseCase
	normalizer     *Normalizer
	idGen          IDGenerator
	retrier        Retrier
	metrics        ImportMetrics
	logger         zerolog.Logger
	concurrency    int
	maxBatch       int
	threshold      int
	dateFormat     string
}

// ImportConfig holds ImportUseCase dependencies and limits.
type ImportConfig struct {
	LedgerRepo          LedgerRepository
	InvestmentRepo      InvestmentRepository
	RunRepo             ImportRunRepository
	Dedup               *DedupUseCase
	Normalizer          *Normalizer
	IDGen               IDGenerator
	Retrier             Retrier
	Metrics             ImportMetrics
	Logger              zerolog.Logger
	Concurrency         int
	MaxBatchSize        int
	SimilarityThreshold int
	// DefaultDateFormat applies to rows whose request names no format.
	DefaultDateFormat string
}

// NewImportUseCase creates a new ImportUseCase.
func NewImportUseCase(cfg ImportConfig) *ImportUseCase {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultImportConcurrency
	}

	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}

	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}

	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}

	if cfg.Retrier == nil {
		cfg.Retrier = directRetrier{}
	}

	if cfg.Dedup == nil {
		cfg.Dedup = NewDedupUseCase(cfg.LedgerRepo)
	}

	return &ImportUseCase{
		ledgerRepo:     cfg.LedgerRepo,
		investmentRepo: cfg.InvestmentRepo,
		runRepo:        cfg.RunRepo,
		dedup:          cfg.Dedup,
		normalizer:     cfg.Normalizer,
		idGen:          cfg.IDGen,
		retrier:        cfg.Retrier,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		concurrency:    cfg.Concurrency,
		maxBatch:       cfg.MaxBatchSize,
		threshold:      cfg.SimilarityThreshold,
		dateFormat:     cfg.DefaultDateFormat,
	}
}

// ImportBatchInput represents input for importing normalized records.
type ImportBatchInput struct {
	Transactions []*domain.NormalizedTransaction
	Options      domain.ImportOptions
	Source       string
}

// ImportRowsInput represents input for importing raw spreadsheet rows.
type ImportRowsInput struct {
	Rows       []domain.RawRow
	Mapping    domain.FieldMapping
	Types      *domain.TransactionTypeTable
	DateFormat string
	Options    domain.ImportOptions
	Source     string
}

// ImportRows normalizes rows concurrently and imports the result.
func (uc *ImportUseCase) ImportRows(ctx context.Context, input ImportRowsInput) (*domain.ImportSummary, error) {
	if err := uc.checkSize(len(input.Rows)); err != nil {
		return nil, err
	}

	dateFormat := input.DateFormat
	if dateFormat == "" {
		dateFormat = uc.dateFormat
	}

	txs := make([]*domain.NormalizedTransaction, len(input.Rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, row := range input.Rows {
		g.Go(func() error {
			tx, err := uc.normalizer.Normalize(gctx, NormalizeInput{
				Row:        row,
				Mapping:    input.Mapping,
				Types:      input.Types,
				DateFormat: dateFormat,
			})
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}

			txs[i] = tx

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return uc.ImportBatch(ctx, ImportBatchInput{
		Transactions: txs,
		Options:      input.Options,
		Source:       input.Source,
	})
}

// prepared is the read-only pre-check of one record.
type prepared struct {
	fingerprint string
	check       domain.DuplicateCheck
	similar     []domain.SimilarMatch
	err         error
}

// ImportBatch gates each record and inserts the survivors.
//
// Gating per record, in order: an existing fingerprint is skipped when
// SkipDuplicates is set; a record without date or amount is skipped unless
// ForceImport; a record without a fingerprint needs review and is skipped
// unless ForceImport. Everything else is inserted if absent. Failures are
// isolated to their record. DryRun evaluates the same gates without writing.
func (uc *ImportUseCase) ImportBatch(ctx context.Context, input ImportBatchInput) (*domain.ImportSummary, error) {
	if err := uc.checkSize(len(input.Transactions)); err != nil {
		return nil, err
	}

	started := time.Now()
	opts := input.Options

	checks := uc.prepare(ctx, input.Transactions)

	summary := &domain.ImportSummary{
		Total:  len(input.Transactions),
		DryRun: opts.DryRun,
	}

	run := &domain.ImportRun{
		ID:        uc.idGen.Generate(),
		Source:    input.Source,
		Options:   opts,
		StartedAt: started.UTC(),
	}

	// fingerprints accepted earlier in this batch, mapped to their row ID
	accepted := make(map[string]string)

	for i, tx := range input.Transactions {
		outcome := uc.gate(ctx, i, tx, checks[i], opts, accepted, run.ID)
		summary.Record(outcome)
	}

	if !opts.DryRun {
		run.Total = summary.Total
		run.Imported = summary.Imported
		run.Skipped = summary.Skipped
		run.Failed = summary.Failed
		run.FinishedAt = time.Now().UTC()

		if err := uc.runRepo.Create(ctx, run); err != nil {
			uc.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to record import run")
		} else {
			summary.RunID = run.ID
		}
	}

	uc.metrics.ObserveImport(summary, time.Since(started))

	uc.logger.Info().
		Str("source", input.Source).
		Bool("dry_run", opts.DryRun).
		Int("total", summary.Total).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("import batch finished")

	return summary, nil
}

// prepare fingerprints every record and runs the read-only duplicate checks
// concurrently.
func (uc *ImportUseCase) prepare(ctx context.Context, txs []*domain.NormalizedTransaction) []prepared {
	out := make([]prepared, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, tx := range txs {
		if tx == nil {
			continue
		}

		fp, ok := Fingerprint(tx)
		if !ok {
			continue
		}

		out[i].fingerprint = fp

		g.Go(func() error {
			check, err := uc.dedup.Check(gctx, fp)
			if err != nil {
				out[i].err = fmt.Errorf("duplicate check failed: %w", err)
				return nil
			}

			out[i].check = check

			if !check.IsDuplicate {
				similar, err := uc.dedup.Similar(gctx, tx, uc.threshold, "")
				if err != nil {
					uc.logger.Warn().Err(err).Int("index", i).Msg("similarity search failed")
				}

				out[i].similar = similar
			}

			return nil
		})
	}

	_ = g.Wait()

	return out
}

func (uc *ImportUseCase) gate(
	ctx context.Context,
	index int,
	tx *domain.NormalizedTransaction,
	p prepared,
	opts domain.ImportOptions,
	accepted map[string]string,
	runID string,
) domain.ImportOutcome {
	outcome := domain.ImportOutcome{Index: index, Fingerprint: p.fingerprint}

	if tx == nil {
		outcome.Status = domain.OutcomeSkippedInvalid
		return outcome
	}

	outcome.Issues = tx.Issues
	outcome.Similar = p.similar

	if p.err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Error = p.err.Error()
		return outcome
	}

	ref, seen := accepted[p.fingerprint]
	isDuplicate := p.check.IsDuplicate || (p.fingerprint != "" && seen)

	if p.check.IsDuplicate {
		ref = p.check.DuplicateRef
	}

	if opts.SkipDuplicates && isDuplicate {
		outcome.Status = domain.OutcomeSkippedDuplicate
		outcome.DuplicateRef = ref
		return outcome
	}

	if !opts.ForceImport && !tx.HasRequiredFields() {
		outcome.Status = domain.OutcomeSkippedInvalid
		return outcome
	}

	if p.fingerprint == "" && !opts.ForceImport {
		outcome.Status = domain.OutcomeNeedsReview
		return outcome
	}

	if opts.DryRun {
		// insert-if-absent would be a no-op
		if isDuplicate {
			outcome.Status = domain.OutcomeSkippedDuplicate
			outcome.DuplicateRef = ref
			return outcome
		}

		if p.fingerprint != "" {
			accepted[p.fingerprint] = ""
		}

		outcome.Status = domain.OutcomeWouldImport

		return outcome
	}

	return uc.insert(ctx, outcome, tx, accepted, runID)
}

func (uc *ImportUseCase) insert(
	ctx context.Context,
	outcome domain.ImportOutcome,
	tx *domain.NormalizedTransaction,
	accepted map[string]string,
	runID string,
) domain.ImportOutcome {
	now := time.Now().UTC()

	row := &domain.LedgerTransaction{
		NormalizedTransaction: *tx,
		ID:                    uc.idGen.Generate(),
		ImportRunID:           runID,
		NeedsReview:           outcome.Fingerprint == "",
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if outcome.Fingerprint != "" {
		fp := outcome.Fingerprint
		row.Fingerprint = &fp
	}

	var (
		inserted   bool
		existingID string
	)

	err := uc.retrier.Retry(ctx, func() error {
		if tx.InvestmentIdentifier != "" {
			if err := uc.investmentRepo.EnsureExists(ctx, &domain.Investment{
				Identifier: tx.InvestmentIdentifier,
				Name:       tx.InvestmentIdentifier,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}

		var err error
		inserted, existingID, err = uc.ledgerRepo.InsertIfAbsent(ctx, row)

		return err
	})
	if err != nil {
		uc.logger.Error().Err(err).Int("index", outcome.Index).Msg("failed to insert transaction")
		outcome.Status = domain.OutcomeFailed
		outcome.Error = err.Error()

		return outcome
	}

	if !inserted {
		outcome.Status = domain.OutcomeSkippedDuplicate
		outcome.DuplicateRef = existingID

		return outcome
	}

	if outcome.Fingerprint != "" {
		accepted[outcome.Fingerprint] = row.ID
	}

	if len(outcome.Similar) > 0 {
		uc.logger.Warn().
			Str("transaction_id", row.ID).
			Int("candidates", len(outcome.Similar)).
			Msg("imported transaction has near-duplicates for review")
	}

	outcome.Status = domain.OutcomeImported
	outcome.TransactionID = row.ID

	return outcome
}

// ListRuns lists recorded import runs.
func (uc *ImportUseCase) ListRuns(ctx context.Context, limit, offset int) ([]*domain.ImportRun, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.runRepo.List(ctx, limit, offset)
}

// GetRun retrieves an import run by ID.
func (uc *ImportUseCase) GetRun(ctx context.Context, id string) (*domain.ImportRun, error) {
	return uc.runRepo.GetByID(ctx, id)
}

func (uc *ImportUseCase) checkSize(n int) error {
	if n == 0 {
		return domain.ErrEmptyBatch
	}

	if n > uc.maxBatch {
		return fmt.Errorf("%w: %d records, limit %d", domain.ErrBatchTooLarge, n, uc.maxBatch)
	}

	return nil
}

type directRetrier struct{}

func (directRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
