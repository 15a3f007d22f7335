package valueobjects

import "fmt"

// ValidationOutcome is the result of an independent validation attempt
type ValidationOutcome string

const (
	OutcomeConfirmed          ValidationOutcome = "confirmed"
	OutcomePartiallyConfirmed ValidationOutcome = "partially_confirmed"
	OutcomeRefuted            ValidationOutcome = "refuted"
	OutcomeInconclusive       ValidationOutcome = "inconclusive"
)

// ParseValidationOutcome validates and converts a raw string
func ParseValidationOutcome(s string) (ValidationOutcome, error) {
	switch ValidationOutcome(s) {
	case OutcomeConfirmed, OutcomePartiallyConfirmed, OutcomeRefuted, OutcomeInconclusive:
		return ValidationOutcome(s), nil
	}
	return "", fmt.Errorf("unknown validation outcome %q", s)
}

// String returns the string representation
func (o ValidationOutcome) String() string {
	return string(o)
}

// AllValidationOutcomes lists every valid outcome in a stable order
func AllValidationOutcomes() []ValidationOutcome {
	return []ValidationOutcome{
		OutcomeConfirmed,
		OutcomePartiallyConfirmed,
		OutcomeRefuted,
		OutcomeInconclusive,
	}
}
