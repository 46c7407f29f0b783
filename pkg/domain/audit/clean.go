package audit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/component"
)

var (
	errSetAndVariant = errors.New("record is both a component set and a variant")
	errSetFindings   = errors.New("component set record carries findings")
)

// CleanRecords normalizes records before they are published. Blank fields get
// their fallbacks; a record that cannot be normalized is replaced by a
// placeholder so the record count never changes.
func CleanRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		cleaned, err := cleanRecord(r, i)
		if err != nil {
			cleaned = placeholder(r, i)
		}
		out[i] = cleaned
	}
	return out
}

func cleanRecord(r Record, i int) (Record, error) {
	if r.IsComponentSet && r.IsVariant {
		return Record{}, errSetAndVariant
	}
	if r.IsComponentSet && len(r.Findings) > 0 {
		return Record{}, errSetFindings
	}

	r.ID = nameOr(r.ID, fmt.Sprintf("generated-%d", i))
	r.Name = nameOr(r.Name, UnnamedComponent)
	r.PageName = nameOr(r.PageName, "Unknown Page")
	r.ComponentSetName = strings.TrimSpace(r.ComponentSetName)

	findings := make([]binding.Finding, 0, len(r.Findings))
	for _, f := range r.Findings {
		if f.Kind == "" {
			return Record{}, fmt.Errorf("finding %q has no kind", f.Property)
		}
		findings = append(findings, binding.Finding{
			Kind:     f.Kind,
			Property: nameOr(f.Property, "Unknown Property"),
			Value:    Display(f.Value),
			Path:     nameOr(f.Path, "Unknown Path"),
			NodeID:   strings.TrimSpace(f.NodeID),
		})
	}
	r.Findings = findings
	r.HasUnboundProperties = len(findings) > 0

	var props []component.VariantProperty
	for _, p := range r.VariantProperties {
		k, v := strings.TrimSpace(p.Key), strings.TrimSpace(p.Value)
		if k != "" && v != "" {
			props = append(props, component.VariantProperty{Key: k, Value: v})
		}
	}
	r.VariantProperties = props
	return r, nil
}

func placeholder(r Record, i int) Record {
	return Record{
		ID:       nameOr(r.ID, fmt.Sprintf("error-%d", i)),
		Name:     nameOr(r.Name, "Error Component"),
		PageName: nameOr(r.PageName, "Unknown Page"),
		Findings: []binding.Finding{},
	}
}
