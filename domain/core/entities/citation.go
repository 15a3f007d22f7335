package entities

import (
	"errors"
	"time"

	"capsulehub/domain/core/valueobjects"

	"github.com/google/uuid"
)

// CitationRecord is a single citation event. CitingCapsuleID is zero when
// the citation originates outside the corpus, in which case ExternalRef
// names the citing document instead.
type CitationRecord struct {
	ID              string                 `json:"id"`
	CitedCapsuleID  valueobjects.CapsuleID `json:"cited_capsule_id"`
	CitingCapsuleID valueobjects.CapsuleID `json:"citing_capsule_id,omitempty"`
	ExternalRef     string                 `json:"external_ref,omitempty"`
	Context         string                 `json:"context,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// NewCitationRecord creates a citation event
func NewCitationRecord(citedID, citingID valueobjects.CapsuleID, externalRef, context string) (CitationRecord, error) {
	if citedID.IsZero() {
		return CitationRecord{}, errors.New("cited capsule ID required")
	}
	if citingID.IsZero() && externalRef == "" {
		return CitationRecord{}, errors.New("either a citing capsule or an external reference is required")
	}

	return CitationRecord{
		ID:              uuid.New().String(),
		CitedCapsuleID:  citedID,
		CitingCapsuleID: citingID,
		ExternalRef:     externalRef,
		Context:         context,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// IsExternal reports whether the citation came from outside the corpus
func (c CitationRecord) IsExternal() bool {
	return c.CitingCapsuleID.IsZero()
}
