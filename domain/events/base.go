package events

import (
	"time"

	"capsulehub/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// ProvenanceRegistered is raised when a capsule joins the provenance graph
type ProvenanceRegistered struct {
	BaseEvent
	CapsuleID  valueobjects.CapsuleID  `json:"capsule_id"`
	SourceKind valueobjects.SourceKind `json:"source_kind"`
}

// NewProvenanceRegistered creates a ProvenanceRegistered event
func NewProvenanceRegistered(capsuleID valueobjects.CapsuleID, sourceKind valueobjects.SourceKind, timestamp time.Time) ProvenanceRegistered {
	return ProvenanceRegistered{
		BaseEvent: BaseEvent{
			AggregateID: capsuleID.String(),
			EventType:   "provenance.registered",
			Timestamp:   timestamp,
		},
		CapsuleID:  capsuleID,
		SourceKind: sourceKind,
	}
}

// VersionAdded is raised when a new content snapshot is appended
type VersionAdded struct {
	BaseEvent
	CapsuleID     valueobjects.CapsuleID `json:"capsule_id"`
	VersionNumber int                    `json:"version_number"`
}

// NewVersionAdded creates a VersionAdded event
func NewVersionAdded(capsuleID valueobjects.CapsuleID, versionNumber int, timestamp time.Time) VersionAdded {
	return VersionAdded{
		BaseEvent: BaseEvent{
			AggregateID: capsuleID.String(),
			EventType:   "provenance.version_added",
			Timestamp:   timestamp,
		},
		CapsuleID:     capsuleID,
		VersionNumber: versionNumber,
	}
}

// RelationAdded is raised when an evolution edge is inserted
type RelationAdded struct {
	BaseEvent
	SourceCapsuleID valueobjects.CapsuleID    `json:"source_capsule_id"`
	TargetCapsuleID valueobjects.CapsuleID    `json:"target_capsule_id"`
	RelationType    valueobjects.RelationType `json:"relation_type"`
}

// NewRelationAdded creates a RelationAdded event
func NewRelationAdded(sourceID, targetID valueobjects.CapsuleID, relationType valueobjects.RelationType, timestamp time.Time) RelationAdded {
	return RelationAdded{
		BaseEvent: BaseEvent{
			AggregateID: targetID.String(),
			EventType:   "provenance.relation_added",
			Timestamp:   timestamp,
		},
		SourceCapsuleID: sourceID,
		TargetCapsuleID: targetID,
		RelationType:    relationType,
	}
}

// CitationRecorded is raised when a citation event lands in the ledger
type CitationRecorded struct {
	BaseEvent
	CitedCapsuleID valueobjects.CapsuleID `json:"cited_capsule_id"`
	NewCount       int64                  `json:"new_count"`
}

// NewCitationRecorded creates a CitationRecorded event
func NewCitationRecorded(citedID valueobjects.CapsuleID, newCount int64, timestamp time.Time) CitationRecorded {
	return CitationRecorded{
		BaseEvent: BaseEvent{
			AggregateID: citedID.String(),
			EventType:   "provenance.citation_recorded",
			Timestamp:   timestamp,
		},
		CitedCapsuleID: citedID,
		NewCount:       newCount,
	}
}

// ValidationRecorded is raised when a validation attempt is logged
type ValidationRecorded struct {
	BaseEvent
	CapsuleID valueobjects.CapsuleID         `json:"capsule_id"`
	Outcome   valueobjects.ValidationOutcome `json:"outcome"`
}

// NewValidationRecorded creates a ValidationRecorded event
func NewValidationRecorded(capsuleID valueobjects.CapsuleID, outcome valueobjects.ValidationOutcome, timestamp time.Time) ValidationRecorded {
	return ValidationRecorded{
		BaseEvent: BaseEvent{
			AggregateID: capsuleID.String(),
			EventType:   "provenance.validation_recorded",
			Timestamp:   timestamp,
		},
		CapsuleID: capsuleID,
		Outcome:   outcome,
	}
}
