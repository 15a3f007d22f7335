package ports

import (
	"context"

	"capsulehub/domain/core/aggregates"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/services"
	"capsulehub/domain/core/valueobjects"
	"capsulehub/domain/events"
)

// CapsuleRegistry is the external CRUD collaborator that owns capsule
// titles and bodies. The engine only needs existence checks from it to
// enforce referential integrity.
type CapsuleRegistry interface {
	// CapsuleExists reports whether the capsule ID is known
	CapsuleExists(ctx context.Context, id valueobjects.CapsuleID) (bool, error)
}

// ProvenanceStore persists the one-per-capsule registration record
type ProvenanceStore interface {
	// Register stores the registration record; fails if already registered
	Register(ctx context.Context, record entities.ProvenanceRecord) error

	// Get retrieves the registration record for a capsule
	Get(ctx context.Context, id valueobjects.CapsuleID) (entities.ProvenanceRecord, error)

	// IsRegistered reports whether a capsule has a provenance record
	IsRegistered(ctx context.Context, id valueobjects.CapsuleID) (bool, error)
}

// VersionStore is the append-only log of content snapshots.
// Implementations must serialize AppendNext per capsule ID so version
// numbers stay contiguous under concurrent writers.
type VersionStore interface {
	// AppendNext appends a snapshot with version number = current max + 1
	AppendNext(ctx context.Context, id valueobjects.CapsuleID, contentHash, changeSummary string, datm *valueobjects.DATMInputs) (entities.CapsuleVersion, error)

	// Latest returns the newest version, or false if none exists
	Latest(ctx context.Context, id valueobjects.CapsuleID) (entities.CapsuleVersion, bool, error)

	// History returns all versions ascending by version number.
	// An unknown or empty capsule yields an empty slice, not an error.
	History(ctx context.Context, id valueobjects.CapsuleID) ([]entities.CapsuleVersion, error)
}

// RelationStore owns the evolution graph. AddRelation must run the cycle
// check and the insert as one atomic unit.
type RelationStore interface {
	// AddRelation validates graph invariants and inserts the edge
	AddRelation(ctx context.Context, rel entities.EvolutionRelation) error

	// Subgraph returns the bounded traversal around a capsule
	Subgraph(ctx context.Context, id valueobjects.CapsuleID, direction aggregates.TraversalDirection, maxDepth, maxNodes int) (aggregates.Subgraph, error)

	// Overview returns graph-wide aggregates
	Overview(ctx context.Context) (aggregates.Overview, error)

	// AllRelations returns every edge in creation order
	AllRelations(ctx context.Context) ([]entities.EvolutionRelation, error)
}

// CitationLedger is the append-only multiset of citation events plus the
// maintained per-capsule counter. Count must always equal the number of
// ledger records for the capsule.
type CitationLedger interface {
	// Cite appends a citation record and bumps the counter atomically
	Cite(ctx context.Context, record entities.CitationRecord) (int64, error)

	// Count returns the maintained citation count, O(1) amortized
	Count(ctx context.Context, id valueobjects.CapsuleID) (int64, error)

	// TotalCitations returns the corpus-wide citation count
	TotalCitations(ctx context.Context) (int64, error)
}

// ValidationLog is the append-only record of validation attempts
type ValidationLog interface {
	// Append stores a validation record
	Append(ctx context.Context, record entities.ValidationRecord) error

	// List returns all records for a capsule ascending by created_at
	List(ctx context.Context, id valueobjects.CapsuleID) ([]entities.ValidationRecord, error)

	// TotalValidations returns the corpus-wide validation count
	TotalValidations(ctx context.Context) (int64, error)
}

// ScoreCache memoizes derived DATM scores. Entries are keyed by a hash of
// the score inputs, so a changed sub-score can never surface a stale value.
type ScoreCache interface {
	// Get retrieves a cached score
	Get(ctx context.Context, key string) (services.Score, bool)

	// Set stores a score with TTL in seconds
	Set(ctx context.Context, key string, score services.Score, ttl int) error

	// Delete removes a cached score
	Delete(ctx context.Context, key string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error
}
