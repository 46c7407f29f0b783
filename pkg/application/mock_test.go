package application_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
	"github.com/felixgeelhaar/compaudit/pkg/domain/events"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
)

// MockRepo is an in-memory session store.
type MockRepo struct {
	mu          sync.Mutex
	Records     []audit.Record
	Summary     *audit.QuickScanSummary
	Settings    settings.Settings
	Progress    scan.Progress
	ViewState   view.State
	Info        *domain.ScanInfo
	Events      []domain.Event
	Files       map[string][]byte
	Initialized bool
	SaveError   error
	LoadError   error

	// ProgressLog keeps every saved progress message in order.
	ProgressLog []string
	// RecordCounts keeps the size of every saved record set in order.
	RecordCounts []int
}

func (m *MockRepo) Document() domain.DocumentID { return domain.MustDocumentID("doc-1") }
func (m *MockRepo) Initialize() error           { m.Initialized = true; return nil }
func (m *MockRepo) IsInitialized() bool         { return m.Initialized }

func (m *MockRepo) SaveRecords(r []audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = r
	m.RecordCounts = append(m.RecordCounts, len(r))
	return m.SaveError
}

func (m *MockRepo) LoadRecords() ([]audit.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Record{}, m.Records...), m.LoadError
}

func (m *MockRepo) SaveSummary(s *audit.QuickScanSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summary = s
	return m.SaveError
}

func (m *MockRepo) LoadSummary() (*audit.QuickScanSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Summary, m.LoadError
}

func (m *MockRepo) SaveSettings(s settings.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Settings = s
	return m.SaveError
}

func (m *MockRepo) LoadSettings() (settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Settings == nil {
		return settings.Default(), m.LoadError
	}
	return settings.Normalize(m.Settings), m.LoadError
}

func (m *MockRepo) SaveProgress(p scan.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Pages = append([]scan.PageScanStatus(nil), p.Pages...)
	m.Progress = p
	m.ProgressLog = append(m.ProgressLog, p.Message)
	return m.SaveError
}

func (m *MockRepo) LoadProgress() (scan.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.Progress
	p.Pages = append([]scan.PageScanStatus(nil), p.Pages...)
	return p, m.LoadError
}

func (m *MockRepo) SaveViewState(st view.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ViewState = st
	return m.SaveError
}

func (m *MockRepo) LoadViewState() (view.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ViewState, m.LoadError
}

func (m *MockRepo) SaveScanInfo(info domain.ScanInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Info = &info
	return m.SaveError
}

func (m *MockRepo) LoadScanInfo() (domain.ScanInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Info == nil {
		return domain.ScanInfo{CurrentPageOnly: true}, m.LoadError
	}
	return *m.Info, m.LoadError
}

func (m *MockRepo) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records, m.Summary, m.Settings, m.Info = nil, nil, nil, nil
	m.Progress = scan.Progress{}
	m.ViewState = view.State{}
	return m.SaveError
}

func (m *MockRepo) RecordEvent(e domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, e)
	return m.SaveError
}

func (m *MockRepo) LoadEvents() ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Event{}, m.Events...), m.LoadError
}

func (m *MockRepo) WriteFile(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Files == nil {
		m.Files = make(map[string][]byte)
	}
	m.Files[name] = data
	return "/session/" + name, m.SaveError
}

// StaticDocs serves a fixed document.
type StaticDocs struct {
	Doc *document.Document
	Err error
}

func (s *StaticDocs) Document(context.Context) (*document.Document, error) {
	return s.Doc, s.Err
}

// BlockingDocs blocks until Release is closed.
type BlockingDocs struct {
	Doc     *document.Document
	Entered chan struct{}
	Release chan struct{}
	once    sync.Once
}

func (b *BlockingDocs) Document(ctx context.Context) (*document.Document, error) {
	b.once.Do(func() { close(b.Entered) })
	select {
	case <-b.Release:
		return b.Doc, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RecordingPublisher keeps every dispatched event type.
type RecordingPublisher struct {
	mu     sync.Mutex
	Types  []string
	Events []events.DomainEvent
}

func (p *RecordingPublisher) Dispatch(_ context.Context, e events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Types = append(p.Types, e.EventType())
	p.Events = append(p.Events, e)
	return nil
}

func (p *RecordingPublisher) Count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.Types {
		if t == eventType {
			n++
		}
	}
	return n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var docLink = []document.DocumentationLink{{URI: "https://docs.example.com"}}

// iconsDocument has a cover page without components and an Icons page with a
// standalone component carrying two hardcoded fills and a compliant set of
// three variants. Icons is the current page.
func iconsDocument() *document.Document {
	set := &document.Node{ID: "set", Name: "Arrow", Type: document.TypeComponentSet, Description: "Arrows", DocumentationLinks: docLink}
	for _, name := range []string{"Direction=Up", "Direction=Down", "Direction=Left"} {
		set.Children = append(set.Children, &document.Node{
			ID: "v-" + name, Name: name, Type: document.TypeComponent,
			Description: "Arrow variant", DocumentationLinks: docLink,
		})
	}
	star := &document.Node{
		ID: "star", Name: "Star", Type: document.TypeComponent,
		Fills: &document.Paints{Items: []document.Paint{
			{Type: document.PaintSolid, Color: &document.Color{R: 1}},
			{Type: document.PaintSolid, Color: &document.Color{G: 1}},
		}},
	}
	icons := &document.Page{ID: "p2", Name: "Icons", Children: []*document.Node{star, set}}
	icons.Link()
	cover := &document.Page{ID: "p1", Name: "Cover"}

	return &document.Document{ID: "doc-1", Name: "Kit", CurrentPageID: "p2", Pages: []*document.Page{cover, icons}}
}
