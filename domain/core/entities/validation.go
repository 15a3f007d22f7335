package entities

import (
	"errors"
	"time"

	"capsulehub/domain/core/valueobjects"

	"github.com/google/uuid"
)

// ValidationRecord is one independent validation or replication attempt.
// Records are append-only; the same validator may re-validate a capsule.
type ValidationRecord struct {
	ID                string                         `json:"id"`
	CapsuleID         valueobjects.CapsuleID         `json:"capsule_id"`
	ValidatorIdentity string                         `json:"validator_identity"`
	Outcome           valueobjects.ValidationOutcome `json:"outcome"`
	EvidenceNote      string                         `json:"evidence_note,omitempty"`
	CreatedAt         time.Time                      `json:"created_at"`
}

// NewValidationRecord creates a validation event
func NewValidationRecord(capsuleID valueobjects.CapsuleID, validatorIdentity string, outcome valueobjects.ValidationOutcome, evidenceNote string) (ValidationRecord, error) {
	if capsuleID.IsZero() {
		return ValidationRecord{}, errors.New("capsule ID required")
	}
	if validatorIdentity == "" {
		return ValidationRecord{}, errors.New("validator identity required")
	}

	return ValidationRecord{
		ID:                uuid.New().String(),
		CapsuleID:         capsuleID,
		ValidatorIdentity: validatorIdentity,
		Outcome:           outcome,
		EvidenceNote:      evidenceNote,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// ValidationSummary is the per-outcome histogram for one capsule
type ValidationSummary struct {
	CapsuleID valueobjects.CapsuleID `json:"capsule_id"`
	Total     int                    `json:"total"`
	Counts    map[string]int         `json:"counts"`
}

// Summarize builds the outcome histogram for a set of records
func Summarize(capsuleID valueobjects.CapsuleID, records []ValidationRecord) ValidationSummary {
	counts := make(map[string]int, len(valueobjects.AllValidationOutcomes()))
	for _, o := range valueobjects.AllValidationOutcomes() {
		counts[o.String()] = 0
	}
	for _, r := range records {
		counts[r.Outcome.String()]++
	}
	return ValidationSummary{
		CapsuleID: capsuleID,
		Total:     len(records),
		Counts:    counts,
	}
}
