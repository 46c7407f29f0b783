// Package component extracts governance metadata from component nodes:
// description and documentation presence, publishing visibility and the
// variant properties encoded in a variant's name.
package component

import (
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

// VariantProperty is one axis=value pair of a variant name.
type VariantProperty struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Metadata is the metadata-only view of a component.
type Metadata struct {
	HasDescription         bool
	HasDocumentationLink   bool
	IsHiddenFromPublishing bool
	// SetID and SetName are empty for standalone components.
	SetID             string
	SetName           string
	VariantProperties []VariantProperty
}

// IsVariant reports whether the component belongs to a component set.
func (m Metadata) IsVariant() bool {
	return m.SetID != ""
}

// Classify extracts the metadata of a component node.
func Classify(n *document.Node) Metadata {
	m := Metadata{
		HasDescription:       HasDescription(n),
		HasDocumentationLink: HasDocumentationLink(n),
	}
	// The effective name is the set name, or the component's own name when
	// the set has none.
	effective := strings.TrimSpace(n.Name)
	if set := n.ComponentSet(); set != nil {
		m.SetID = set.ID
		m.SetName = set.Name
		m.VariantProperties = ParseVariantProperties(n.Name)
		if name := strings.TrimSpace(set.Name); name != "" {
			effective = name
		}
	}
	m.IsHiddenFromPublishing = IsHiddenFromPublishing(effective)
	return m
}

// HasDescription reports a non-blank description.
func HasDescription(n *document.Node) bool {
	return strings.TrimSpace(n.Description) != ""
}

// HasDocumentationLink reports at least one link with a non-blank URI.
func HasDocumentationLink(n *document.Node) bool {
	for _, l := range n.DocumentationLinks {
		if strings.TrimSpace(l.URI) != "" {
			return true
		}
	}
	return false
}

// IsHiddenFromPublishing applies the naming convention that keeps a
// component out of the published library.
func IsHiddenFromPublishing(name string) bool {
	name = strings.TrimSpace(name)
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// ParseVariantProperties parses "Key=Value, Key2=Value2". Segments without
// "=" or with an empty side are dropped. A repeated key keeps its first
// position and takes the last value. It returns nil when nothing parses.
func ParseVariantProperties(name string) []VariantProperty {
	var props []VariantProperty
	index := make(map[string]int)
	for _, segment := range strings.Split(name, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(segment), "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if i, seen := index[key]; seen {
			props[i].Value = value
			continue
		}
		index[key] = len(props)
		props = append(props, VariantProperty{Key: key, Value: value})
	}
	return props
}
