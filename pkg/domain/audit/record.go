// Package audit turns the components of a page into audit records and derives
// document-wide statistics from them.
package audit

import (
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/component"
)

const (
	UnnamedComponent = "Unnamed Component"
	UnnamedPage      = "Unnamed Page"
	CurrentPage      = "Current Page"
)

// Record is one scanned component, variant or component set.
type Record struct {
	ID                     string                      `json:"id"`
	Name                   string                      `json:"name"`
	ComponentSetID         string                      `json:"componentSetId,omitempty"`
	ComponentSetName       string                      `json:"componentSetName,omitempty"`
	VariantProperties      []component.VariantProperty `json:"variantProperties,omitempty"`
	PageName               string                      `json:"pageName"`
	HasDescription         bool                        `json:"hasDescription"`
	HasDocumentationLink   bool                        `json:"hasDocumentationLink"`
	HasUnboundProperties   bool                        `json:"hasUnboundProperties"`
	Findings               []binding.Finding           `json:"findings"`
	IsHiddenFromPublishing bool                        `json:"isHiddenFromPublishing"`
	IsOnCurrentPage        bool                        `json:"isOnCurrentPage"`
	IsComponentSet         bool                        `json:"isComponentSet,omitempty"`
	IsVariant              bool                        `json:"isVariant,omitempty"`
	HasExpandableContent   bool                        `json:"hasExpandableContent"`
	// ScanError is set when the property walk of this component was abandoned.
	ScanError string `json:"scanError,omitempty"`
}

// IsStandalone reports a component that is neither a set nor a variant.
func (r Record) IsStandalone() bool {
	return !r.IsComponentSet && !r.IsVariant
}

// Variant returns the value of a variant axis, or "".
func (r Record) Variant(key string) string {
	for _, p := range r.VariantProperties {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// VariantLabel renders the variant properties as "Key: Value, Key: Value".
func (r Record) VariantLabel() string {
	parts := make([]string, 0, len(r.VariantProperties))
	for _, p := range r.VariantProperties {
		parts = append(parts, p.Key+": "+p.Value)
	}
	return strings.Join(parts, ", ")
}

// Display is the single presentation fallback for optional text: blank
// values render as "N/A".
func Display(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return "N/A"
}

func nameOr(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

// PageName returns the trimmed page name or its fallback.
func PageName(name string) string {
	return nameOr(name, UnnamedPage)
}
