package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/compaudit/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
)

func newDashboardServices(t *testing.T) *wiring.AppServices {
	t.Helper()
	root := newWorkspace(t)
	if _, err := runCLI(t, root, "init", "--document", "kit.json"); err != nil {
		t.Fatal(err)
	}
	writeFastConfig(t, root)

	services, err := wiring.BuildAppServices(context.Background(), root, wiring.Options{
		Logger: wiring.NewLogger(&strings.Builder{}, "error"),
	})
	if err != nil {
		t.Fatal(err)
	}
	return services
}

func TestDashboardModel(t *testing.T) {
	services := newDashboardServices(t)
	ctx := context.Background()

	m := newDashboardModel(ctx, services)
	if m.err != nil {
		t.Fatal(m.err)
	}
	if !strings.Contains(m.View(), "0 components") {
		t.Errorf("empty session view:\n%s", m.View())
	}

	res, err := services.Scan.DeepScan(ctx, scan.ScopeCurrentPage)
	updated, _ := m.Update(scanDoneMsg{res: res, err: err})
	m = updated.(dashboardModel)
	if len(m.records) != 1 || m.records[0].Name != "Star" {
		t.Fatalf("unexpected rows %+v", m.records)
	}
	if !strings.Contains(m.View(), "rgb(255, 0, 0)") {
		t.Errorf("selected component findings missing:\n%s", m.View())
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(dashboardModel)
	if m.notice != "Star • Icons > Star" {
		t.Errorf("notice = %q", m.notice)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = updated.(dashboardModel)
	if m.notice != "Scan scope: all-pages" {
		t.Errorf("notice = %q", m.notice)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = updated.(dashboardModel)
	if !m.busy || cmd == nil {
		t.Error("quick scan should start")
	}
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if updated.(dashboardModel).notice != "A scan is already running." || cmd != nil {
		t.Error("a second scan must not start")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestDashboardModel_ScanError(t *testing.T) {
	services := newDashboardServices(t)
	m := newDashboardModel(context.Background(), services)

	updated, _ := m.Update(scanDoneMsg{err: scan.ErrScanInProgress})
	m = updated.(dashboardModel)
	if m.busy || !strings.Contains(m.notice, "a scan is already running") {
		t.Errorf("unexpected state busy=%v notice=%q", m.busy, m.notice)
	}
}
