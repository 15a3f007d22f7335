package entities

import (
	"errors"
	"time"

	"capsulehub/domain/core/valueobjects"

	"github.com/google/uuid"
)

// ProvenanceRecord anchors a capsule in the provenance graph: where it came
// from and when tracking started. One record per capsule.
type ProvenanceRecord struct {
	ID         string                  `json:"id"`
	CapsuleID  valueobjects.CapsuleID  `json:"capsule_id"`
	SourceKind valueobjects.SourceKind `json:"source_kind"`
	SourceRef  string                  `json:"source_ref,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// NewProvenanceRecord registers a capsule for provenance tracking
func NewProvenanceRecord(capsuleID valueobjects.CapsuleID, sourceKind valueobjects.SourceKind, sourceRef string) (ProvenanceRecord, error) {
	if capsuleID.IsZero() {
		return ProvenanceRecord{}, errors.New("capsule ID required")
	}

	return ProvenanceRecord{
		ID:         uuid.New().String(),
		CapsuleID:  capsuleID,
		SourceKind: sourceKind,
		SourceRef:  sourceRef,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
