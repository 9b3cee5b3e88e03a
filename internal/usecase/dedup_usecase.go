package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/fundledger/internal/domain"
)

// Fuzzy similarity weights.
const (
	scoreSameDate       = 40
	scoreAmountWithin1  = 40
	scoreAmountWithin5  = 20
	scoreAmountWithin10 = 10
	scoreSameInvestment = 20
)

var (
	onePercent  = decimal.NewFromFloat(0.01)
	fivePercent = decimal.NewFromFloat(0.05)
	tenPercent  = decimal.NewFromFloat(0.10)
)

// Fingerprint returns the hex SHA-256 of date_iso|amount_original|investment_identifier.
// ok is false when any input is missing; such records need manual review.
func Fingerprint(tx *domain.NormalizedTransaction) (string, bool) {
	if tx == nil || tx.Date == nil || !tx.AmountOriginal.Valid || tx.InvestmentIdentifier == "" {
		return "", false
	}

	payload := tx.DateISO() + "|" + tx.AmountOriginal.Decimal.String() + "|" + tx.InvestmentIdentifier
	sum := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(sum[:]), true
}

// DedupUseCase detects exact and near duplicates against the ledger.
type DedupUseCase struct {
	ledgerRepo LedgerRepository
}

// NewDedupUseCase creates a new DedupUseCase.
func NewDedupUseCase(ledgerRepo LedgerRepository) *DedupUseCase {
	return &DedupUseCase{ledgerRepo: ledgerRepo}
}

// Check looks a fingerprint up in the ledger's unique index.
func (uc *DedupUseCase) Check(ctx context.Context, fingerprint string) (domain.DuplicateCheck, error) {
	existing, err := uc.ledgerRepo.GetByFingerprint(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return domain.DuplicateCheck{}, nil
		}

		return domain.DuplicateCheck{}, err
	}

	return domain.DuplicateCheck{IsDuplicate: true, DuplicateRef: existing.ID}, nil
}

// Similar scores ledger rows of the same investment within ±7 days and ±10%
// of tx's amount, returning those scoring at least threshold, best first.
// excludeID skips one ledger row, typically tx itself.
func (uc *DedupUseCase) Similar(ctx context.Context, tx *domain.NormalizedTransaction, threshold int, excludeID string) ([]domain.SimilarMatch, error) {
	if tx.Date == nil || !tx.AmountOriginal.Valid || tx.InvestmentIdentifier == "" {
		return nil, nil
	}

	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	candidates, err := uc.ledgerRepo.FindCandidates(ctx, tx.InvestmentIdentifier, tx.Date.Add(-SimilarityWindow), tx.Date.Add(SimilarityWindow))
	if err != nil {
		return nil, err
	}

	var matches []domain.SimilarMatch

	for _, c := range candidates {
		if c.ID == excludeID {
			continue
		}

		score, ok := similarity(tx, &c.NormalizedTransaction)
		if ok && score >= threshold {
			matches = append(matches, domain.SimilarMatch{TransactionID: c.ID, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	return matches, nil
}

// SimilarTo runs Similar for a transaction already in the ledger.
func (uc *DedupUseCase) SimilarTo(ctx context.Context, id string, threshold int) ([]domain.SimilarMatch, error) {
	tx, err := uc.ledgerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return uc.Similar(ctx, &tx.NormalizedTransaction, threshold, tx.ID)
}

// similarity scores candidate against target. ok is false when the
// candidate falls outside the date or amount window.
func similarity(target, candidate *domain.NormalizedTransaction) (int, bool) {
	if candidate.Date == nil || !candidate.AmountOriginal.Valid {
		return 0, false
	}

	gap := candidate.Date.Sub(*target.Date)
	if gap < 0 {
		gap = -gap
	}

	if gap > SimilarityWindow {
		return 0, false
	}

	diff, ok := relativeDiff(target.AmountOriginal.Decimal, candidate.AmountOriginal.Decimal)
	if !ok || diff.GreaterThan(tenPercent) {
		return 0, false
	}

	score := 0

	if candidate.Date.Equal(*target.Date) {
		score += scoreSameDate
	}

	switch {
	case diff.LessThanOrEqual(onePercent):
		score += scoreAmountWithin1
	case diff.LessThanOrEqual(fivePercent):
		score += scoreAmountWithin5
	default:
		score += scoreAmountWithin10
	}

	if candidate.InvestmentIdentifier == target.InvestmentIdentifier {
		score += scoreSameInvestment
	}

	return score, true
}

// relativeDiff returns |b-a| / |a|. A zero target only matches zero.
func relativeDiff(a, b decimal.Decimal) (decimal.Decimal, bool) {
	if a.IsZero() {
		if b.IsZero() {
			return decimal.Zero, true
		}
		return decimal.Zero, false
	}

	return b.Sub(a).Abs().Div(a.Abs()), true
}
