package usecase

import "time"

const (
	// DefaultImportConcurrency bounds parallel rate lookups and dedup checks in a batch.
	DefaultImportConcurrency = 8

	// DefaultMaxBatchSize is the largest batch accepted by ImportBatch.
	DefaultMaxBatchSize = 10000

	// DefaultSimilarityThreshold is the minimum fuzzy score surfaced for review.
	DefaultSimilarityThreshold = 80

	// SimilarityWindow is how far apart in time near-duplicates may be.
	SimilarityWindow = 7 * 24 * time.Hour

	// DefaultRateMissTTL is how long an unresolvable rate key skips the providers.
	DefaultRateMissTTL = 10 * time.Minute

	// DefaultRateCacheTTL is how long a rate stays in the shared cache.
	DefaultRateCacheTTL = 30 * 24 * time.Hour

	// TargetCurrency is the conversion target of the normalizer.
	TargetCurrency = "USD"
)
