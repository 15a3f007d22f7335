package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Traversal limits
	DefaultTraversalDepth int // 0 means unbounded
	MaxSubgraphNodes      int // cap on nodes returned by a subgraph query

	// Write contention
	ConflictRetryBudget  int
	ConflictRetryBackoff time.Duration

	// Record constraints
	MaxNoteLength          int
	MaxContextLength       int
	MaxEvidenceNoteLength  int
	MaxChangeSummaryLength int

	// Score caching
	ScoreCacheTTL time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Subgraph queries are unbounded by default; callers opt into a
		// depth. The node cap keeps pathological graphs from flooding a
		// response.
		DefaultTraversalDepth: 0,
		MaxSubgraphNodes:      250,

		// Bounded optimistic retry before ConflictRetryExhausted surfaces
		ConflictRetryBudget:  3,
		ConflictRetryBackoff: 10 * time.Millisecond,

		MaxNoteLength:          1000,
		MaxContextLength:       2000,
		MaxEvidenceNoteLength:  4000,
		MaxChangeSummaryLength: 2000,

		ScoreCacheTTL: 5 * time.Minute,
	}
}
