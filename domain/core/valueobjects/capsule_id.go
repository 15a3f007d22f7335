package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// CapsuleID is a value object representing a stable capsule identifier.
// IDs are assigned once by the capsule registry and never reused.
type CapsuleID struct {
	value string
}

// NewCapsuleID creates a new random CapsuleID
func NewCapsuleID() CapsuleID {
	return CapsuleID{value: uuid.New().String()}
}

// NewCapsuleIDFromString creates a CapsuleID from an existing string
func NewCapsuleIDFromString(id string) (CapsuleID, error) {
	if id == "" {
		return CapsuleID{}, errors.New("capsule ID cannot be empty")
	}
	if !isValidUUID(id) {
		return CapsuleID{}, errors.New("capsule ID must be a valid UUID")
	}
	return CapsuleID{value: id}, nil
}

// String returns the string representation of the CapsuleID
func (id CapsuleID) String() string {
	return id.value
}

// Equals checks if two CapsuleIDs are equal
func (id CapsuleID) Equals(other CapsuleID) bool {
	return id.value == other.value
}

// IsZero checks if the CapsuleID is the zero value
func (id CapsuleID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id CapsuleID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *CapsuleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("CapsuleID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// isValidUUID validates if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
