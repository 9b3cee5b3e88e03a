package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportSummaryRecord(t *testing.T) {
	t.Parallel()

	var s ImportSummary
	s.Record(ImportOutcome{Index: 0, Status: OutcomeImported, TransactionID: "tx-1"})
	s.Record(ImportOutcome{Index: 1, Status: OutcomeSkippedDuplicate, DuplicateRef: "tx-0"})
	s.Record(ImportOutcome{Index: 2, Status: OutcomeNeedsReview})
	s.Record(ImportOutcome{Index: 3, Status: OutcomeFailed, Error: "boom"})
	s.Record(ImportOutcome{Index: 4, Status: OutcomeWouldImport})

	assert.Equal(t, 2, s.Imported)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, []string{"tx-1"}, s.IDs)
	assert.Equal(t, []ImportError{{Index: 3, Message: "boom"}}, s.Errors)
	assert.Len(t, s.Outcomes, 5)
}
