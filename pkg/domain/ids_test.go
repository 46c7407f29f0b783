package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
)

func TestDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid key", "aB3xYz9", false},
		{"valid with dash", "design-system_v2", false},
		{"valid with dot", "tokens.v2", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"path separator", "a/b", true},
		{"parent traversal", "a..b", true},
		{"leading dot", ".hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := domain.NewDocumentID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDocumentID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && id.String() != tt.value {
				t.Errorf("String() = %v, want %v", id.String(), tt.value)
			}
		})
	}
}

func TestSanitizeDocumentID(t *testing.T) {
	id, err := domain.SanitizeDocumentID("My Design System (v2)")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if id.String() != "My-Design-System--v2-" {
		t.Errorf("unexpected id %q", id.String())
	}

	if _, err := domain.SanitizeDocumentID("///"); err == nil {
		t.Error("expected error for id without usable runes")
	}
}
