package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
	"github.com/felixgeelhaar/compaudit/pkg/storage"
)

func setupRepo(t *testing.T) *storage.FilesystemRepository {
	t.Helper()
	repo := storage.NewFilesystemRepository(t.TempDir(), domain.MustDocumentID("doc-1"))
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return repo
}

func TestResolvePath(t *testing.T) {
	repo := setupRepo(t)

	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"session key", storage.AuditDataFile, false},
		{"empty", "", true},
		{"parent traversal", "../other/auditData.json", true},
		{"nested", "sub/file.json", true},
		{"absolute escape", "/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := repo.ResolvePath(tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePath(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
			if !tt.wantErr && filepath.Dir(path) != repo.Dir() {
				t.Errorf("path %s escapes %s", path, repo.Dir())
			}
		})
	}
}

func TestNoDocumentSelected(t *testing.T) {
	repo := storage.NewFilesystemRepository(t.TempDir(), domain.DocumentID{})
	if err := repo.Initialize(); err == nil {
		t.Error("expected error without document")
	}
	if _, err := repo.LoadRecords(); err == nil {
		t.Error("expected error without document")
	}
}

func TestDefaultsWhenEmpty(t *testing.T) {
	repo := setupRepo(t)

	records, err := repo.LoadRecords()
	if err != nil || records == nil || len(records) != 0 {
		t.Errorf("LoadRecords() = %v, %v; want empty slice", records, err)
	}
	summary, err := repo.LoadSummary()
	if err != nil || summary != nil {
		t.Errorf("LoadSummary() = %v, %v; want nil", summary, err)
	}
	s, err := repo.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if !s.Enabled(settings.Fill) || s.Enabled(settings.HideZeroValues) {
		t.Errorf("expected default settings, got %v", s)
	}
	info, err := repo.LoadScanInfo()
	if err != nil || info.LastScanTime != "" || !info.CurrentPageOnly {
		t.Errorf("LoadScanInfo() = %+v, %v", info, err)
	}
}

func TestSessionRoundtrip(t *testing.T) {
	repo := setupRepo(t)

	records := []audit.Record{{
		ID:                   "c1",
		Name:                 "Button",
		PageName:             "Icons",
		HasUnboundProperties: true,
		Findings: []binding.Finding{
			{Kind: binding.KindFill, Property: "Fill", Value: "rgb(255, 0, 0)", Path: "Button", NodeID: "c1"},
		},
	}}
	if err := repo.SaveRecords(records); err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}
	loaded, err := repo.LoadRecords()
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Findings[0].Value != "rgb(255, 0, 0)" {
		t.Errorf("unexpected records: %+v", loaded)
	}

	if err := repo.SaveSummary(&audit.QuickScanSummary{TotalPages: 3, UniqueComponents: 2}); err != nil {
		t.Fatal(err)
	}
	summary, err := repo.LoadSummary()
	if err != nil || summary == nil || summary.UniqueComponents != 2 {
		t.Fatalf("LoadSummary() = %+v, %v", summary, err)
	}
	if err := repo.SaveSummary(nil); err != nil {
		t.Fatal(err)
	}
	if summary, _ := repo.LoadSummary(); summary != nil {
		t.Errorf("expected summary removed, got %+v", summary)
	}

	progress := scan.NewProgress([]string{"Cover", "Icons"})
	progress.Mark(1, scan.PageError, 0, errors.New("boom"))
	if err := repo.SaveProgress(progress); err != nil {
		t.Fatal(err)
	}
	gotProgress, err := repo.LoadProgress()
	if err != nil || gotProgress.Pages[1].Err != "boom" {
		t.Errorf("LoadProgress() = %+v, %v", gotProgress, err)
	}

	st := view.State{}
	st.TogglePage("Icons")
	st.LoadMore("Icons")
	if err := repo.SaveViewState(st); err != nil {
		t.Fatal(err)
	}
	gotState, err := repo.LoadViewState()
	if err != nil || gotState.Cursor("Icons") != 15 || !gotState.IsPageExpanded("Icons") {
		t.Errorf("LoadViewState() = %+v, %v", gotState, err)
	}
}

func TestSettingsStoredAsYAML(t *testing.T) {
	repo := setupRepo(t)

	s, err := settings.ApplyToggle(settings.Default(), settings.Text)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveSettings(s); err != nil {
		t.Fatal(err)
	}

	path, _ := repo.ResolvePath(storage.SettingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "fontFamily: false") {
		t.Errorf("expected yaml settings, got:\n%s", data)
	}

	loaded, err := repo.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Enabled(settings.Text) || loaded.Enabled(settings.LineHeight) {
		t.Error("text group should be off")
	}
	if !loaded.Enabled(settings.Fill) {
		t.Error("fill should stay on")
	}
}

func TestClearKeepsAuditTrail(t *testing.T) {
	repo := setupRepo(t)

	if err := repo.SaveRecords([]audit.Record{{ID: "c1"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveScanInfo(domain.ScanInfo{LastScanTime: "now"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.RecordEvent(domain.Event{ID: "e1", Action: "scan.completed"}); err != nil {
		t.Fatal(err)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	// A second clear on an empty session is fine.
	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	records, _ := repo.LoadRecords()
	if len(records) != 0 {
		t.Errorf("expected records cleared, got %d", len(records))
	}
	events, err := repo.LoadEvents()
	if err != nil || len(events) != 1 {
		t.Errorf("expected audit trail kept, got %v, %v", events, err)
	}
}

func TestAuditTrail(t *testing.T) {
	repo := setupRepo(t)

	events, err := repo.LoadEvents()
	if err != nil || len(events) != 0 {
		t.Fatalf("LoadEvents() on empty = %v, %v", events, err)
	}

	first := domain.Event{ID: "e1", Action: "scan.completed", Actor: "cli", Timestamp: time.Now().UTC()}
	first.Hash = first.CalculateHash()
	second := domain.Event{ID: "e2", Action: "settings.changed", Actor: "cli", PrevHash: first.Hash, Timestamp: time.Now().UTC()}
	second.Hash = second.CalculateHash()

	for _, e := range []domain.Event{first, second} {
		if err := repo.RecordEvent(e); err != nil {
			t.Fatal(err)
		}
	}

	path, _ := repo.ResolvePath(storage.EventsFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("not json\n")
	_ = f.Close()

	events, err = repo.LoadEvents()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected malformed line skipped, got %d events", len(events))
	}
	if idx := domain.VerifyChain(events); idx != -1 {
		t.Errorf("chain broken at %d", idx)
	}
}

func TestSessionsAreIsolatedPerDocument(t *testing.T) {
	root := t.TempDir()
	a := storage.NewFilesystemRepository(root, domain.MustDocumentID("a"))
	b := storage.NewFilesystemRepository(root, domain.MustDocumentID("b"))

	if err := a.SaveRecords([]audit.Record{{ID: "x"}}); err != nil {
		t.Fatal(err)
	}
	records, err := b.LoadRecords()
	if err != nil || len(records) != 0 {
		t.Errorf("document b sees %v, %v", records, err)
	}
	if b.IsInitialized() {
		t.Error("document b should not be initialized")
	}
}

const export = `{
  "id": "file:42",
  "name": "Kit",
  "currentPage": "p1",
  "pages": [{"id": "p1", "name": "Icons", "children": [
    {"id": "c1", "name": "Star", "type": "COMPONENT"}
  ]}]
}`

func TestDocumentLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kit.json")
	if err := os.WriteFile(path, []byte(export), 0600); err != nil {
		t.Fatal(err)
	}

	loader := storage.NewDocumentLoader()
	doc, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Pages) != 1 || len(doc.Pages[0].Components()) != 1 {
		t.Errorf("unexpected document: %+v", doc)
	}

	id, err := storage.DocumentIDFor(doc, path)
	if err != nil || id.String() != "file-42" {
		t.Errorf("DocumentIDFor() = %q, %v", id, err)
	}
	id, err = storage.DocumentIDFor(&document.Document{}, path)
	if err != nil || id.String() != "kit" {
		t.Errorf("DocumentIDFor() fallback = %q, %v", id, err)
	}

	if _, err := loader.Load(context.Background(), filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing export")
	}
	if _, err := loader.Load(context.Background(), ""); err == nil {
		t.Error("expected error for empty path")
	}
}
