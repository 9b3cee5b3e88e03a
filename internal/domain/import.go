package domain

import "time"

// ImportOptions control gating in an import batch.
type ImportOptions struct {
	SkipDuplicates bool `json:"skip_duplicates"`
	ForceImport    bool `json:"force_import"`
	DryRun         bool `json:"dry_run"`
}

// DefaultImportOptions skips duplicates and writes.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{SkipDuplicates: true}
}

// OutcomeStatus is the per-record result of an import.
type OutcomeStatus string

const (
	OutcomeImported         OutcomeStatus = "imported"
	OutcomeWouldImport      OutcomeStatus = "would_import"
	OutcomeSkippedDuplicate OutcomeStatus = "skipped_duplicate"
	OutcomeSkippedInvalid   OutcomeStatus = "skipped_invalid"
	OutcomeNeedsReview      OutcomeStatus = "needs_review"
	OutcomeFailed           OutcomeStatus = "failed"
)

// Skipped reports whether the status counts as skipped in a summary.
func (s OutcomeStatus) Skipped() bool {
	switch s {
	case OutcomeSkippedDuplicate, OutcomeSkippedInvalid, OutcomeNeedsReview:
		return true
	default:
		return false
	}
}

// SimilarMatch is a fuzzy near-duplicate candidate.
type SimilarMatch struct {
	TransactionID string `json:"transaction_id"`
	Score         int    `json:"score"`
}

// DuplicateCheck is the exact-fingerprint duplicate signal.
type DuplicateCheck struct {
	IsDuplicate  bool
	DuplicateRef string
}

// ImportOutcome describes what happened to one record of a batch.
type ImportOutcome struct {
	Index         int
	Status        OutcomeStatus
	TransactionID string
	Fingerprint   string
	DuplicateRef  string
	Similar       []SimilarMatch
	Issues        []Issue
	Error         string
}

// ImportError is a record-level failure, keyed by the original record index.
type ImportError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// ImportSummary is the result of an import batch.
type ImportSummary struct {
	RunID    string
	Total    int
	Imported int
	Skipped  int
	Failed   int
	DryRun   bool
	IDs      []string
	Errors   []ImportError
	Outcomes []ImportOutcome
}

// Record folds one outcome into the counters.
func (s *ImportSummary) Record(o ImportOutcome) {
	s.Outcomes = append(s.Outcomes, o)

	switch {
	case o.Status == OutcomeImported || o.Status == OutcomeWouldImport:
		s.Imported++
		if o.TransactionID != "" {
			s.IDs = append(s.IDs, o.TransactionID)
		}
	case o.Status == OutcomeFailed:
		s.Failed++
		s.Errors = append(s.Errors, ImportError{Index: o.Index, Message: o.Error})
	case o.Status.Skipped():
		s.Skipped++
	}
}

// ImportRun is the audit record of a committed import batch.
type ImportRun struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Source     string
	Options    ImportOptions
	Total      int
	Imported   int
	Skipped    int
	Failed     int
}
