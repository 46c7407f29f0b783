package application

import (
	"fmt"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
)

// ResultView is the filtered, paged result list of the session.
type ResultView struct {
	Pages []view.PageView `json:"pages"`
	Stats view.Stats      `json:"stats"`
}

// ViewService computes the result list and keeps its expansion and
// pagination state.
type ViewService struct {
	repo domain.SessionRepository
}

func NewViewService(repo domain.SessionRepository) *ViewService {
	return &ViewService{repo: repo}
}

// Current computes the view from the stored records, settings and state.
func (s *ViewService) Current() (*ResultView, error) {
	records, err := s.repo.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	current, err := s.repo.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	st, err := s.repo.LoadViewState()
	if err != nil {
		return nil, fmt.Errorf("load view state: %w", err)
	}

	pages := view.ComputeView(records, current, st)
	return &ResultView{Pages: pages, Stats: view.Summarize(pages)}, nil
}

func (s *ViewService) TogglePage(page string) error {
	return s.mutate(func(st *view.State) { st.TogglePage(page) })
}

func (s *ViewService) ToggleComponent(id string) error {
	return s.mutate(func(st *view.State) { st.ToggleComponent(id) })
}

func (s *ViewService) LoadMore(page string) error {
	return s.mutate(func(st *view.State) { st.LoadMore(page) })
}

func (s *ViewService) ResetPage(page string) error {
	return s.mutate(func(st *view.State) { st.Reset(page) })
}

// LoadAll shows every visible record of page.
func (s *ViewService) LoadAll(page string) error {
	rv, err := s.Current()
	if err != nil {
		return err
	}
	total := 0
	for _, p := range rv.Pages {
		if p.PageName == page {
			total = p.Total()
		}
	}
	return s.mutate(func(st *view.State) { st.LoadAll(page, total) })
}

// ExpandAll expands every page that currently has visible records.
func (s *ViewService) ExpandAll() error {
	rv, err := s.Current()
	if err != nil {
		return err
	}
	names := make([]string, len(rv.Pages))
	for i, p := range rv.Pages {
		names[i] = p.PageName
	}
	return s.mutate(func(st *view.State) { st.ExpandAll(names) })
}

func (s *ViewService) CollapseAll() error {
	return s.mutate(func(st *view.State) { st.CollapseAll() })
}

func (s *ViewService) mutate(change func(st *view.State)) error {
	st, err := s.repo.LoadViewState()
	if err != nil {
		return fmt.Errorf("load view state: %w", err)
	}
	change(&st)
	if err := s.repo.SaveViewState(st); err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}
