// Package memory provides in-process implementations of every persistence
// port. It backs the development profile and the test suites; the sqlite
// package is the durable equivalent.
package memory

import (
	"context"
	"sync"

	"capsulehub/domain/core/aggregates"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// Store holds all provenance state in process memory. A single RWMutex
// guards every map: the engine's atomicity requirements (contiguous
// version numbers, cycle-check-then-insert, ledger-append-then-count) all
// reduce to "one writer at a time", which the mutex gives directly.
type Store struct {
	mu sync.RWMutex

	capsules         map[valueobjects.CapsuleID]bool
	provenance       map[valueobjects.CapsuleID]entities.ProvenanceRecord
	versions         map[valueobjects.CapsuleID][]entities.CapsuleVersion
	graph            *aggregates.EvolutionGraph
	citations        map[valueobjects.CapsuleID][]entities.CitationRecord
	citationCounts   map[valueobjects.CapsuleID]int64
	totalCitations   int64
	validations      map[valueobjects.CapsuleID][]entities.ValidationRecord
	totalValidations int64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		capsules:       make(map[valueobjects.CapsuleID]bool),
		provenance:     make(map[valueobjects.CapsuleID]entities.ProvenanceRecord),
		versions:       make(map[valueobjects.CapsuleID][]entities.CapsuleVersion),
		graph:          aggregates.NewEvolutionGraph(),
		citations:      make(map[valueobjects.CapsuleID][]entities.CitationRecord),
		citationCounts: make(map[valueobjects.CapsuleID]int64),
		validations:    make(map[valueobjects.CapsuleID][]entities.ValidationRecord),
	}
}

// SeedCapsule makes a capsule ID known to the registry. The engine never
// creates capsules itself; the owning CRUD service (or a test) seeds them.
func (s *Store) SeedCapsule(id valueobjects.CapsuleID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capsules[id] = true
}

// CapsuleExists reports whether the capsule ID is known
func (s *Store) CapsuleExists(ctx context.Context, id valueobjects.CapsuleID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capsules[id], nil
}

// Register stores the registration record; fails if already registered
func (s *Store) Register(ctx context.Context, record entities.ProvenanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.provenance[record.CapsuleID]; ok {
		return pkgerrors.NewValidationError("capsule " + record.CapsuleID.String() + " is already registered")
	}
	s.provenance[record.CapsuleID] = record
	return nil
}

// Get retrieves the registration record for a capsule
func (s *Store) Get(ctx context.Context, id valueobjects.CapsuleID) (entities.ProvenanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.provenance[id]
	if !ok {
		return entities.ProvenanceRecord{}, pkgerrors.NewNotFoundError("provenance record for capsule " + id.String())
	}
	return record, nil
}

// IsRegistered reports whether a capsule has a provenance record
func (s *Store) IsRegistered(ctx context.Context, id valueobjects.CapsuleID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.provenance[id]
	return ok, nil
}

// AppendNext appends a snapshot with version number = current max + 1.
// Number assignment and append happen under one lock, so concurrent
// writers always observe contiguous numbering.
func (s *Store) AppendNext(ctx context.Context, id valueobjects.CapsuleID, contentHash, changeSummary string, datm *valueobjects.DATMInputs) (entities.CapsuleVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := len(s.versions[id]) + 1
	version, err := entities.NewCapsuleVersion(id, next, contentHash, changeSummary, datm)
	if err != nil {
		return entities.CapsuleVersion{}, pkgerrors.NewValidationError(err.Error())
	}
	s.versions[id] = append(s.versions[id], version)
	return version, nil
}

// Latest returns the newest version, or false if none exists
func (s *Store) Latest(ctx context.Context, id valueobjects.CapsuleID) (entities.CapsuleVersion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.versions[id]
	if len(history) == 0 {
		return entities.CapsuleVersion{}, false, nil
	}
	return history[len(history)-1], true, nil
}

// History returns all versions ascending by version number
func (s *Store) History(ctx context.Context, id valueobjects.CapsuleID) ([]entities.CapsuleVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]entities.CapsuleVersion, len(s.versions[id]))
	copy(history, s.versions[id])
	return history, nil
}

// AddRelation validates graph invariants and inserts the edge. The
// aggregate runs the cycle check, so check and insert are atomic under
// the write lock.
func (s *Store) AddRelation(ctx context.Context, rel entities.EvolutionRelation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.AddRelation(rel)
}

// Subgraph returns the bounded traversal around a capsule
func (s *Store) Subgraph(ctx context.Context, id valueobjects.CapsuleID, direction aggregates.TraversalDirection, maxDepth, maxNodes int) (aggregates.Subgraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Subgraph(id, direction, maxDepth, maxNodes), nil
}

// Overview returns graph-wide aggregates
func (s *Store) Overview(ctx context.Context) (aggregates.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Overview(), nil
}

// AllRelations returns every edge in creation order
func (s *Store) AllRelations(ctx context.Context) ([]entities.EvolutionRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Edges(), nil
}

// Cite appends a citation record and bumps the counter atomically
func (s *Store) Cite(ctx context.Context, record entities.CitationRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.citations[record.CitedCapsuleID] = append(s.citations[record.CitedCapsuleID], record)
	s.citationCounts[record.CitedCapsuleID]++
	s.totalCitations++
	return s.citationCounts[record.CitedCapsuleID], nil
}

// Count returns the maintained citation count
func (s *Store) Count(ctx context.Context, id valueobjects.CapsuleID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.citationCounts[id], nil
}

// TotalCitations returns the corpus-wide citation count
func (s *Store) TotalCitations(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalCitations, nil
}

// Citations returns the ledger records for a capsule in append order
func (s *Store) Citations(ctx context.Context, id valueobjects.CapsuleID) ([]entities.CitationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]entities.CitationRecord, len(s.citations[id]))
	copy(records, s.citations[id])
	return records, nil
}

// Append stores a validation record
func (s *Store) Append(ctx context.Context, record entities.ValidationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.validations[record.CapsuleID] = append(s.validations[record.CapsuleID], record)
	s.totalValidations++
	return nil
}

// List returns all records for a capsule ascending by created_at
func (s *Store) List(ctx context.Context, id valueobjects.CapsuleID) ([]entities.ValidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]entities.ValidationRecord, len(s.validations[id]))
	copy(records, s.validations[id])
	return records, nil
}

// TotalValidations returns the corpus-wide validation count
func (s *Store) TotalValidations(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalValidations, nil
}
