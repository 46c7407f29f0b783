package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/compaudit/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		p := tea.NewProgram(newDashboardModel(commandContext(cmd), services), tea.WithContext(commandContext(cmd)))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

var dashboardStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

const progressInterval = 200 * time.Millisecond

type scanDoneMsg struct {
	res *application.ScanResult
	err error
}

type progressTickMsg struct{}

type dashboardModel struct {
	ctx      context.Context
	services *wiring.AppServices

	table   table.Model
	records []view.RecordView
	report  *application.Report
	status  *application.Status
	busy    bool
	notice  string
	err     error
}

func newDashboardModel(ctx context.Context, services *wiring.AppServices) dashboardModel {
	columns := []table.Column{
		{Title: "Page", Width: 16},
		{Title: "Component", Width: 28},
		{Title: "Variant", Width: 24},
		{Title: "Desc", Width: 4},
		{Title: "Docs", Width: 4},
		{Title: "Hardcoded", Width: 9},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	m := dashboardModel{ctx: ctx, services: services, table: t}
	m.refresh()
	return m
}

// refresh reloads the report and status from the session store.
func (m *dashboardModel) refresh() {
	report, err := m.services.Report.Build()
	if err != nil {
		m.err = err
		return
	}
	status, err := m.services.Session.Status()
	if err != nil {
		m.err = err
		return
	}
	m.report, m.status, m.err = report, status, nil

	m.records = nil
	rows := []table.Row{}
	for _, p := range report.Pages {
		for _, r := range p.Records {
			m.records = append(m.records, r)
			rows = append(rows, table.Row{
				p.PageName,
				r.Name,
				audit.Display(r.VariantLabel()),
				yesNo(r.HasDescription),
				yesNo(r.HasDocumentationLink),
				fmt.Sprint(len(r.VisibleFindings)),
			})
		}
	}
	m.table.SetRows(rows)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func (m dashboardModel) Init() tea.Cmd { return nil }

func (m dashboardModel) runScan(run func(context.Context) (*application.ScanResult, error)) (dashboardModel, tea.Cmd) {
	if m.busy || m.services.Scan.IsBusy() {
		m.notice = "A scan is already running."
		return m, nil
	}
	m.busy = true
	m.notice = ""
	ctx := m.ctx
	scanCmd := func() tea.Msg {
		res, err := run(ctx)
		return scanDoneMsg{res: res, err: err}
	}
	return m, tea.Batch(scanCmd, tickProgress())
}

func tickProgress() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg { return progressTickMsg{} })
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			return m.runScan(m.services.Scan.QuickScan)
		case "d":
			return m.runScan(m.services.Scan.Rescan)
		case "a":
			return m.runScan(m.services.Scan.ScanAllPages)
		case "c":
			return m.runScan(func(ctx context.Context) (*application.ScanResult, error) {
				return m.services.Scan.DeepScan(ctx, scan.ScopeCurrentPage)
			})
		case "t":
			scope, err := m.services.Scan.ToggleScope()
			if err != nil {
				m.err = err
				return m, nil
			}
			m.notice = fmt.Sprintf("Scan scope: %s", scope)
			m.refresh()
			return m, nil
		case "enter":
			m.notice = m.locateSelected()
			return m, nil
		}

	case scanDoneMsg:
		m.busy = false
		m.refresh()
		if msg.err != nil {
			m.notice = MapError(msg.err).Error()
		}
		return m, nil

	case progressTickMsg:
		if !m.busy {
			return m, nil
		}
		if status, err := m.services.Session.Status(); err == nil {
			m.status = status
		}
		return m, tickProgress()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) selected() (view.RecordView, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return view.RecordView{}, false
	}
	return m.records[i], true
}

func (m dashboardModel) locateSelected() string {
	r, ok := m.selected()
	if !ok {
		return ""
	}
	loc, err := m.services.Navigation.Locate(m.ctx, r.ID, "")
	if err != nil {
		return application.NavigationFailedMessage
	}
	return loc.Message
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render("Component audit · " + m.status.Document)

	info := "Last scan: never"
	if m.status.Info.LastScanTime != "" {
		info = "Last scan: " + m.status.Info.LastScanTime
	}
	scope := "current page"
	if !m.status.Info.CurrentPageOnly {
		scope = "all pages"
	}
	info += "  Scope: " + scope

	stats := fmt.Sprintf("%d components  %d without description  %d without docs  %d hardcoded values",
		m.report.Stats.Visible, m.report.Stats.MissingDesc, m.report.Stats.MissingDocs, m.report.Stats.VisibleFindings)

	var progress strings.Builder
	if m.busy || m.status.Progress.Message != "" {
		renderProgress(&progress, m.status.Progress)
	}

	detail := ""
	if r, ok := m.selected(); ok && len(r.VisibleFindings) > 0 {
		var b strings.Builder
		b.WriteString(titleStyle.Render(r.Name) + "\n")
		for _, f := range r.VisibleFindings {
			fmt.Fprintf(&b, "%s: %s %s\n", f.Property, f.Value, mutedStyle.Render(f.Path))
		}
		detail = b.String()
	}

	notice := ""
	if m.notice != "" {
		notice = warnStyle.Render(m.notice)
	}

	return dashboardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			info,
			stats,
			strings.TrimRight(progress.String(), "\n"),
			m.table.View(),
			detail,
			notice,
			mutedStyle.Render("[s] Quick  [c] Current page  [a] All pages  [d] Rescan  [t] Scope  [enter] Locate  [q] Quit"),
		),
	) + "\n"
}
