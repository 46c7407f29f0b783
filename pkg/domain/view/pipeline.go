package view

import (
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
)

// RecordView is a visible record with its filtered findings.
type RecordView struct {
	audit.Record
	VisibleFindings []binding.Finding `json:"visibleFindings"`
	IsExpanded      bool              `json:"isExpanded"`
}

// PageView groups the visible records of one page.
type PageView struct {
	PageName       string       `json:"pageName"`
	Records        []RecordView `json:"components"`
	IsExpanded     bool         `json:"isExpanded"`
	DisplayedCount int          `json:"displayedCount"`
}

// Total is the number of visible records on the page.
func (p PageView) Total() int {
	return len(p.Records)
}

// Displayed returns the records within the page cursor.
func (p PageView) Displayed() []RecordView {
	if p.DisplayedCount < len(p.Records) {
		return p.Records[:p.DisplayedCount]
	}
	return p.Records
}

// HasMore reports whether records remain beyond the cursor.
func (p PageView) HasMore() bool {
	return p.DisplayedCount < len(p.Records)
}

// ComputeView filters records and groups them by page in first-seen order.
func ComputeView(records []audit.Record, s settings.Settings, st State) []PageView {
	var pages []PageView
	index := make(map[string]int)

	for _, r := range records {
		if !ShouldShowComponent(r, s) {
			continue
		}
		i, ok := index[r.PageName]
		if !ok {
			i = len(pages)
			index[r.PageName] = i
			pages = append(pages, PageView{
				PageName:       r.PageName,
				IsExpanded:     st.IsPageExpanded(r.PageName),
				DisplayedCount: st.Cursor(r.PageName),
			})
		}
		pages[i].Records = append(pages[i].Records, RecordView{
			Record:          r,
			VisibleFindings: FilterFindings(r.Findings, s),
			IsExpanded:      st.IsComponentExpanded(r.ID),
		})
	}
	return pages
}

// Stats are the counts shown above the result list.
type Stats struct {
	Visible          int `json:"visible"`
	MissingDesc      int `json:"missingDescription"`
	MissingDocs      int `json:"missingDocs"`
	WithFindings     int `json:"withFindings"`
	VisibleFindings  int `json:"visibleFindings"`
	PagesWithResults int `json:"pagesWithResults"`
}

// Summarize counts what a view shows.
func Summarize(pages []PageView) Stats {
	st := Stats{PagesWithResults: len(pages)}
	for _, p := range pages {
		for _, r := range p.Records {
			st.Visible++
			if !r.HasDescription {
				st.MissingDesc++
			}
			if !r.HasDocumentationLink {
				st.MissingDocs++
			}
			if len(r.VisibleFindings) > 0 {
				st.WithFindings++
			}
			st.VisibleFindings += len(r.VisibleFindings)
		}
	}
	return st
}
