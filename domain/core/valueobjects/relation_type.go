package valueobjects

import "fmt"

// RelationType classifies a directed evolution edge between two capsules.
// Derivation types describe ancestry and participate in the acyclicity
// check; critique types do not.
type RelationType string

const (
	RelationDerivedFrom  RelationType = "derived_from"
	RelationForkedFrom   RelationType = "forked_from"
	RelationMergedFrom   RelationType = "merged_from"
	RelationRefutedBy    RelationType = "refuted_by"
	RelationSupersededBy RelationType = "superseded_by"
)

// ParseRelationType validates and converts a raw string
func ParseRelationType(s string) (RelationType, error) {
	switch RelationType(s) {
	case RelationDerivedFrom, RelationForkedFrom, RelationMergedFrom,
		RelationRefutedBy, RelationSupersededBy:
		return RelationType(s), nil
	}
	return "", fmt.Errorf("unknown relation type %q", s)
}

// ParticipatesInAncestry reports whether edges of this type count toward
// the derivation DAG invariant. Critique relations are exempt.
func (t RelationType) ParticipatesInAncestry() bool {
	switch t {
	case RelationDerivedFrom, RelationForkedFrom, RelationMergedFrom:
		return true
	}
	return false
}

// String returns the string representation
func (t RelationType) String() string {
	return string(t)
}

// AllRelationTypes lists every valid relation type in a stable order
func AllRelationTypes() []RelationType {
	return []RelationType{
		RelationDerivedFrom,
		RelationForkedFrom,
		RelationMergedFrom,
		RelationRefutedBy,
		RelationSupersededBy,
	}
}
