package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// documentIDPattern keeps ids usable as a single path segment.
var documentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// DocumentID identifies the document an audit session belongs to.
type DocumentID struct {
	value string
}

// NewDocumentID creates a DocumentID from a string value.
func NewDocumentID(value string) (DocumentID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DocumentID{}, fmt.Errorf("document ID cannot be empty")
	}
	if !documentIDPattern.MatchString(value) || strings.Contains(value, "..") {
		return DocumentID{}, fmt.Errorf("invalid document ID format: %s", value)
	}
	return DocumentID{value: value}, nil
}

// MustDocumentID creates a DocumentID or panics if invalid. Use only in tests.
func MustDocumentID(value string) DocumentID {
	id, err := NewDocumentID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// SanitizeDocumentID derives a valid id from an arbitrary string such as a
// file name, replacing every disallowed rune with '-'.
func SanitizeDocumentID(raw string) (DocumentID, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return NewDocumentID(strings.TrimLeft(b.String(), "-_"))
}

// String returns the string representation of the DocumentID.
func (id DocumentID) String() string {
	return id.value
}

// IsZero returns true if the DocumentID is empty.
func (id DocumentID) IsZero() bool {
	return id.value == ""
}
