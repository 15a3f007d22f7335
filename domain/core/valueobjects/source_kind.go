package valueobjects

import "fmt"

// SourceKind describes where a registered capsule originated
type SourceKind string

const (
	SourceDiscussion SourceKind = "discussion"
	SourceManual     SourceKind = "manual"
	SourceImported   SourceKind = "imported"
)

// ParseSourceKind validates and converts a raw string
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case SourceDiscussion, SourceManual, SourceImported:
		return SourceKind(s), nil
	}
	return "", fmt.Errorf("unknown source kind %q", s)
}

// String returns the string representation
func (k SourceKind) String() string {
	return string(k)
}
