package entities

import (
	"time"

	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/google/uuid"
)

// EvolutionRelation is a directed edge from an ancestor capsule to a
// descendant capsule (or from a capsule to its critique for the
// non-derivation types).
type EvolutionRelation struct {
	ID              string                    `json:"id"`
	SourceCapsuleID valueobjects.CapsuleID    `json:"source_capsule_id"`
	TargetCapsuleID valueobjects.CapsuleID    `json:"target_capsule_id"`
	Type            valueobjects.RelationType `json:"relation_type"`
	Note            string                    `json:"note,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

// NewEvolutionRelation creates an edge after the self-loop check.
// Cycle checking happens at the graph aggregate, which sees all edges.
func NewEvolutionRelation(sourceID, targetID valueobjects.CapsuleID, relationType valueobjects.RelationType, note string) (EvolutionRelation, error) {
	if sourceID.IsZero() || targetID.IsZero() {
		return EvolutionRelation{}, pkgerrors.NewValidationError("source and target capsule IDs are required")
	}
	if sourceID.Equals(targetID) {
		return EvolutionRelation{}, pkgerrors.NewInvalidRelationError("capsule cannot relate to itself")
	}

	return EvolutionRelation{
		ID:              uuid.New().String(),
		SourceCapsuleID: sourceID,
		TargetCapsuleID: targetID,
		Type:            relationType,
		Note:            note,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
