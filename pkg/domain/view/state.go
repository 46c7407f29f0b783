package view

const (
	// ChunkSize is the number of records a page shows before "load more".
	ChunkSize = 5
	// LoadMoreSize is the increment of one "load more".
	LoadMoreSize = 10
)

// State is the expand/collapse and pagination state of the result list.
type State struct {
	ExpandedPages      []string       `json:"expandedPages"`
	ExpandedComponents []string       `json:"expandedComponents"`
	DisplayCounts      map[string]int `json:"pageDisplayCounts"`
}

// Cursor returns the display count of a page, defaulting to ChunkSize.
func (s *State) Cursor(page string) int {
	if n := s.DisplayCounts[page]; n > 0 {
		return n
	}
	return ChunkSize
}

func (s *State) setCursor(page string, n int) {
	if s.DisplayCounts == nil {
		s.DisplayCounts = make(map[string]int)
	}
	s.DisplayCounts[page] = n
}

// IsPageExpanded reports whether page is expanded.
func (s *State) IsPageExpanded(page string) bool {
	return indexOf(s.ExpandedPages, page) >= 0
}

// IsComponentExpanded reports whether the record id is expanded.
func (s *State) IsComponentExpanded(id string) bool {
	return indexOf(s.ExpandedComponents, id) >= 0
}

// TogglePage expands or collapses a page. The first expansion initializes
// its cursor.
func (s *State) TogglePage(page string) {
	if i := indexOf(s.ExpandedPages, page); i >= 0 {
		s.ExpandedPages = append(s.ExpandedPages[:i:i], s.ExpandedPages[i+1:]...)
		return
	}
	s.ExpandedPages = append(s.ExpandedPages, page)
	if s.DisplayCounts[page] == 0 {
		s.setCursor(page, ChunkSize)
	}
}

// ExpandAll expands every listed page and resets their cursors.
func (s *State) ExpandAll(pages []string) {
	s.ExpandedPages = append([]string(nil), pages...)
	for _, p := range pages {
		s.setCursor(p, ChunkSize)
	}
}

// CollapseAll collapses every page.
func (s *State) CollapseAll() {
	s.ExpandedPages = nil
}

// ToggleComponent expands or collapses the findings of one record.
func (s *State) ToggleComponent(id string) {
	if i := indexOf(s.ExpandedComponents, id); i >= 0 {
		s.ExpandedComponents = append(s.ExpandedComponents[:i:i], s.ExpandedComponents[i+1:]...)
		return
	}
	s.ExpandedComponents = append(s.ExpandedComponents, id)
}

// LoadMore advances the page cursor by LoadMoreSize.
func (s *State) LoadMore(page string) {
	s.setCursor(page, s.Cursor(page)+LoadMoreSize)
}

// LoadAll sets the page cursor to total.
func (s *State) LoadAll(page string, total int) {
	s.setCursor(page, total)
}

// Reset returns the page cursor to ChunkSize.
func (s *State) Reset(page string) {
	s.setCursor(page, ChunkSize)
}

// Clear drops all expansion and pagination state.
func (s *State) Clear() {
	*s = State{}
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}
