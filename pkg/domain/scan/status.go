// Package scan defines the scan lifecycle: the kind and scope of a scan, the
// per-page progress list and the state machine that guards re-entrancy.
package scan

import "fmt"

// Kind is the depth of a scan.
type Kind string

const (
	KindQuick Kind = "quick"
	KindDeep  Kind = "deep"
)

// Scope selects the pages of a deep scan.
type Scope string

const (
	ScopeCurrentPage Scope = "current-page"
	ScopeAllPages    Scope = "all-pages"
)

// ParseScope accepts the scope names used on the command line.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeCurrentPage, "current", "":
		return ScopeCurrentPage, nil
	case ScopeAllPages, "all":
		return ScopeAllPages, nil
	}
	return "", fmt.Errorf("unknown scan scope %q (want current-page or all-pages)", s)
}

// PageStatus is the progress state of one page.
type PageStatus string

const (
	PagePending  PageStatus = "pending"
	PageLoading  PageStatus = "loading"
	PageComplete PageStatus = "complete"
	PageError    PageStatus = "error"
)

// PageScanStatus is the progress entry of one page during an all-pages scan.
type PageScanStatus struct {
	PageName       string     `json:"pageName"`
	Status         PageStatus `json:"status"`
	ComponentCount int        `json:"componentCount"`
	Err            string     `json:"error,omitempty"`
}

// Progress is the transient progress of the running scan.
type Progress struct {
	Message string           `json:"message"`
	Pages   []PageScanStatus `json:"pages"`
}

// NewProgress creates a pending entry for every page.
func NewProgress(pageNames []string) Progress {
	p := Progress{Pages: make([]PageScanStatus, len(pageNames))}
	for i, name := range pageNames {
		p.Pages[i] = PageScanStatus{PageName: name, Status: PagePending}
	}
	return p
}

// Mark updates the entry at index i. Out-of-range indexes are ignored.
func (p *Progress) Mark(i int, status PageStatus, components int, err error) {
	if i < 0 || i >= len(p.Pages) {
		return
	}
	p.Pages[i].Status = status
	p.Pages[i].ComponentCount = components
	p.Pages[i].Err = ""
	if err != nil {
		p.Pages[i].Err = err.Error()
	}
}

// Count returns the number of entries in status.
func (p Progress) Count(status PageStatus) int {
	n := 0
	for _, s := range p.Pages {
		if s.Status == status {
			n++
		}
	}
	return n
}

// Progress messages shown while scanning.
const (
	MsgQuickRunning     = "Running quick scan..."
	MsgQuickComplete    = "Quick scan complete!"
	MsgQuickError       = "Error occurred during quick scan"
	MsgDeepCurrentPage  = "Deep scanning current page..."
	MsgDeepAllPages     = "Deep scanning all pages..."
	MsgDeepError        = "Error occurred during deep scan"
	MsgInitializing     = "Initializing: Running quick scan..."
	MsgStartingAllPages = "Starting deep scan of all pages..."
	MsgScanError        = "Error occurred during scan"
)

// DeepPageMessage is shown while page i (0-based) of total is processed.
func DeepPageMessage(pageName string, i, total int) string {
	return fmt.Sprintf("Deep scanning page %d/%d: %s", i+1, total, pageName)
}

// DeepPageCompleteMessage is shown after a current-page deep scan.
func DeepPageCompleteMessage(components int) string {
	return fmt.Sprintf("Deep scan complete: Found %d components", components)
}

// DeepCompleteMessage is shown after an all-pages deep scan.
func DeepCompleteMessage(components, pages int) string {
	return fmt.Sprintf("Deep scan complete! Found %d components across %d pages", components, pages)
}

// TimestampFormat stamps the last scan time in UTC.
const TimestampFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
