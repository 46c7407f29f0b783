package audit

import "fmt"

// QuickScanSummary is a document-wide snapshot of component counts.
type QuickScanSummary struct {
	TotalPages          int `json:"totalPages" yaml:"total_pages"`
	PagesWithComponents int `json:"pagesWithComponents" yaml:"pages_with_components"`
	UniqueComponents    int `json:"uniqueComponents" yaml:"unique_components"`
	TotalVariants       int `json:"totalVariants" yaml:"total_variants"`
	WithoutDescription  int `json:"withoutDescription" yaml:"without_description"`
	WithoutDocs         int `json:"withoutDocs" yaml:"without_docs"`
	Hidden              int `json:"hiddenComponents" yaml:"hidden_components"`
	TotalUnbound        int `json:"totalUnboundProperties" yaml:"total_unbound_properties"`
}

// Summarize computes the summary of a scan over totalPages pages. Sets count
// once towards unique components; every non-set record counts as a variant.
func Summarize(totalPages int, records []Record) QuickScanSummary {
	s := QuickScanSummary{TotalPages: totalPages}

	pages := make(map[string]bool)
	sets := make(map[string]bool)
	for _, r := range records {
		pages[r.PageName] = true
		switch {
		case r.IsComponentSet:
			sets[r.ID] = true
		case r.IsVariant:
			sets[r.ComponentSetID] = true
			s.TotalVariants++
		default:
			s.UniqueComponents++
			s.TotalVariants++
		}
		if !r.HasDescription {
			s.WithoutDescription++
		}
		if !r.HasDocumentationLink {
			s.WithoutDocs++
		}
		if r.IsHiddenFromPublishing {
			s.Hidden++
		}
		s.TotalUnbound += len(r.Findings)
	}
	s.PagesWithComponents = len(pages)
	s.UniqueComponents += len(sets)
	return s
}

// Text renders the summary as a single paragraph.
func (s QuickScanSummary) Text() string {
	return fmt.Sprintf("Out of %d pages, %d have components. We found %d unique components and %d total variants. "+
		"%d/%d components do not have a description set, and %d/%d components do not have a documentation link. "+
		"%d components are hidden from publishing.",
		s.TotalPages, s.PagesWithComponents, s.UniqueComponents, s.TotalVariants,
		s.WithoutDescription, s.TotalVariants, s.WithoutDocs, s.TotalVariants, s.Hidden)
}
