package audit

import (
	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/component"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

// Mode selects how much work ProcessPage does per component.
type Mode int

const (
	// Quick extracts metadata only.
	Quick Mode = iota
	// Deep also walks every component for hardcoded properties.
	Deep
)

func (m Mode) String() string {
	if m == Deep {
		return "deep"
	}
	return "quick"
}

// Walker is the property walk used in deep mode.
type Walker interface {
	Walk(root *document.Node) binding.Result
}

// ProcessPage builds the records of every component on page, in document
// order. A component set contributes one record, placed before its first
// variant. currentPage is the name of the page active at scan time.
func ProcessPage(page *document.Page, mode Mode, currentPage string, w Walker) []Record {
	pageName := PageName(page.Name)
	currentPage = nameOr(currentPage, CurrentPage)
	onCurrent := pageName == currentPage

	var records []Record
	seenSets := make(map[string]bool)

	for _, c := range page.Components() {
		meta := component.Classify(c)

		if set := c.ComponentSet(); set != nil && !seenSets[set.ID] {
			seenSets[set.ID] = true
			records = append(records, Record{
				ID:                     set.ID,
				Name:                   nameOr(set.Name, UnnamedComponent),
				PageName:               pageName,
				HasDescription:         component.HasDescription(set),
				HasDocumentationLink:   component.HasDocumentationLink(set),
				Findings:               []binding.Finding{},
				IsHiddenFromPublishing: meta.IsHiddenFromPublishing,
				IsOnCurrentPage:        onCurrent,
				IsComponentSet:         true,
			})
		}

		r := Record{
			ID:                     c.ID,
			Name:                   nameOr(c.Name, UnnamedComponent),
			VariantProperties:      meta.VariantProperties,
			PageName:               pageName,
			HasDescription:         meta.HasDescription,
			HasDocumentationLink:   meta.HasDocumentationLink,
			Findings:               []binding.Finding{},
			IsHiddenFromPublishing: meta.IsHiddenFromPublishing,
			IsOnCurrentPage:        onCurrent,
			IsVariant:              meta.IsVariant(),
		}
		if meta.IsVariant() {
			r.ComponentSetID = meta.SetID
			r.ComponentSetName = nameOr(meta.SetName, UnnamedComponent)
		}

		if mode == Deep && w != nil {
			res := w.Walk(c)
			if res.Failed() {
				r.ScanError = res.Err.Error()
			} else if res.HasUnbound() {
				r.Findings = res.Findings
			}
		}
		r.HasUnboundProperties = len(r.Findings) > 0
		r.HasExpandableContent = r.HasUnboundProperties
		records = append(records, r)
	}

	if mode == Deep {
		markExpandableSets(records)
	}
	return records
}

// markExpandableSets flags every set record with at least one variant that
// has findings.
func markExpandableSets(records []Record) {
	expandable := make(map[string]bool)
	for _, r := range records {
		if r.IsVariant && r.HasUnboundProperties {
			expandable[r.ComponentSetID] = true
		}
	}
	for i := range records {
		if records[i].IsComponentSet {
			records[i].HasExpandableContent = expandable[records[i].ID]
		}
	}
}

// CountFindings returns the total number of findings across records.
func CountFindings(records []Record) int {
	n := 0
	for _, r := range records {
		n += len(r.Findings)
	}
	return n
}
